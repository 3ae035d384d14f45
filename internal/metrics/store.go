// Package metrics persists per-call telemetry for the generative
// endpoints, fallbacks included.
package metrics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/models"
)

// Store handles persistence of call logs.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// Record saves one call log. Telemetry must never fail a request, so
// errors are logged and swallowed.
func (s *Store) Record(ctx context.Context, entry models.AICallLog) {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Warn("Failed to record AI call", "error", err, "endpoint", entry.Endpoint)
	}
}

// Cleanup deletes call logs older than the retention window and
// returns how many rows went away.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AICallLog{})
	return res.RowsAffected, res.Error
}

// FallbackRate reports what share of calls to the endpoint degraded to
// a fallback since the cutoff. Returns 0 when there were no calls.
func (s *Store) FallbackRate(ctx context.Context, endpoint string, since time.Time) (float64, error) {
	var total, fallbacks int64
	err := s.db.WithContext(ctx).
		Model(&models.AICallLog{}).
		Where("endpoint = ? AND created_at >= ?", endpoint, since).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	err = s.db.WithContext(ctx).
		Model(&models.AICallLog{}).
		Where("endpoint = ? AND created_at >= ? AND fallback = ?", endpoint, since, true).
		Count(&fallbacks).Error
	if err != nil {
		return 0, err
	}
	return float64(fallbacks) / float64(total), nil
}
