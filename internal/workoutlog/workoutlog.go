// Package workoutlog persists completed workout sessions.
package workoutlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fittrack-backend/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, entry *models.WorkoutLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create workout log: %w", err)
	}
	return nil
}

// ListByDay returns the user's sessions for the day starting at date,
// oldest first.
func (r *Repository) ListByDay(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.WorkoutLog, error) {
	var entries []models.WorkoutLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, date, date.AddDate(0, 0, 1)).
		Order("completed_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list workout logs: %w", err)
	}
	return entries, nil
}
