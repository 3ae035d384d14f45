package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fittrack-backend/internal/models"
)

// CacheRepository persists finished plans in exercise_plan_cache, one
// row per (user, cache key).
type CacheRepository struct {
	db *gorm.DB
}

func NewCacheRepository(db *gorm.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Lookup returns the cached plan for the key, treating expired rows
// the same as missing ones.
func (r *CacheRepository) Lookup(ctx context.Context, userID uuid.UUID, cacheKey string) (*Plan, bool, error) {
	var row models.ExercisePlanCache
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND cache_key = ?", userID, cacheKey).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup plan cache: %w", err)
	}
	if !row.ExpiresAt.After(time.Now()) {
		return nil, false, nil
	}

	var plan Plan
	if err := json.Unmarshal(row.Plan, &plan); err != nil {
		return nil, false, fmt.Errorf("decode cached plan: %w", err)
	}
	return &plan, true, nil
}

// Store upserts the plan for the key, replacing any previous entry.
func (r *CacheRepository) Store(ctx context.Context, userID uuid.UUID, cacheKey string, plan Plan, expiresAt time.Time) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	row := models.ExercisePlanCache{
		UserID:    userID,
		CacheKey:  cacheKey,
		Plan:      payload,
		ExpiresAt: expiresAt,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("store plan cache: %w", err)
	}
	return nil
}
