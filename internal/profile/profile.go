// Package profile loads user profiles and assembles the context bundle
// the assistant endpoints personalize with.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fittrack-backend/internal/models"
)

// ErrNotFound reports that no profile row exists for the user.
var ErrNotFound = errors.New("user profile not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// Context is the bundle returned by GET /api/ai/context: the profile
// plus the most recent meals and plan feedback.
type Context struct {
	User     *models.User        `json:"user"`
	Meals    []models.FoodLog    `json:"meals"`
	Feedback []models.AIFeedback `json:"feedback"`
}

const recentLimit = 5

// BuildContext loads the three context slices in parallel.
func (r *Repository) BuildContext(ctx context.Context, userID uuid.UUID) (*Context, error) {
	out := &Context{
		Meals:    []models.FoodLog{},
		Feedback: []models.AIFeedback{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := r.Get(gctx, userID)
		if err != nil {
			return err
		}
		out.User = user
		return nil
	})
	g.Go(func() error {
		err := r.db.WithContext(gctx).
			Where("user_id = ?", userID).
			Order("eaten_at DESC").
			Limit(recentLimit).
			Find(&out.Meals).Error
		if err != nil {
			return fmt.Errorf("load recent meals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := r.db.WithContext(gctx).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Limit(recentLimit).
			Find(&out.Feedback).Error
		if err != nil {
			return fmt.Errorf("load feedback: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveFeedback records a user's rating of a generated plan.
func (r *Repository) SaveFeedback(ctx context.Context, fb *models.AIFeedback) error {
	if err := r.db.WithContext(ctx).Create(fb).Error; err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}
