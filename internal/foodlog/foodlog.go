// Package foodlog persists logged meals.
package foodlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fittrack-backend/internal/models"
)

// ErrNotFound reports that the entry does not exist or belongs to a
// different user.
var ErrNotFound = errors.New("food log entry not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, entry *models.FoodLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create food log: %w", err)
	}
	return nil
}

// ListByDay returns the user's entries for the day starting at date,
// oldest first.
func (r *Repository) ListByDay(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.FoodLog, error) {
	var entries []models.FoodLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, date, date.AddDate(0, 0, 1)).
		Order("eaten_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list food logs: %w", err)
	}
	return entries, nil
}

// Updates carries the user-correctable fields. Nil means unchanged.
type Updates struct {
	FoodName     *string `json:"foodName"`
	MealType     *string `json:"mealType"`
	Calories     *int    `json:"calories"`
	ProteinGrams *int    `json:"proteinGrams"`
	CarbsGrams   *int    `json:"carbsGrams"`
	FatGrams     *int    `json:"fatGrams"`
	SugarGrams   *int    `json:"sugarGrams"`
	Amount       *string `json:"amount"`
}

// Update applies a user correction to their own entry and marks it
// corrected.
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, id uint, updates Updates) (*models.FoodLog, error) {
	var entry models.FoodLog
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load food log: %w", err)
	}

	changes := map[string]any{"is_corrected": true}
	if updates.FoodName != nil {
		changes["food_name"] = *updates.FoodName
	}
	if updates.MealType != nil {
		changes["meal_type"] = *updates.MealType
	}
	if updates.Calories != nil {
		changes["calories"] = *updates.Calories
	}
	if updates.ProteinGrams != nil {
		changes["protein_grams"] = *updates.ProteinGrams
	}
	if updates.CarbsGrams != nil {
		changes["carbs_grams"] = *updates.CarbsGrams
	}
	if updates.FatGrams != nil {
		changes["fat_grams"] = *updates.FatGrams
	}
	if updates.SugarGrams != nil {
		changes["sugar_grams"] = *updates.SugarGrams
	}
	if updates.Amount != nil {
		changes["amount"] = *updates.Amount
	}

	if err := r.db.WithContext(ctx).Model(&entry).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update food log: %w", err)
	}
	return &entry, nil
}

// Delete removes the user's own entry.
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.FoodLog{})
	if res.Error != nil {
		return fmt.Errorf("delete food log: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
