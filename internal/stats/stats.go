// Package stats aggregates food and workout logs into daily and
// weekly totals.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fittrack-backend/internal/models"
)

// DaySummary is one day of combined intake and exercise totals.
type DaySummary struct {
	Date             string `json:"date"`
	TotalCalories    int    `json:"total_calories"`
	TotalProtein     int    `json:"total_protein"`
	TotalCarbs       int    `json:"total_carbs"`
	TotalFat         int    `json:"total_fat"`
	CaloriesBurned   int    `json:"calories_burned"`
	ExerciseDuration int    `json:"exercise_duration"`
	MealsCount       int    `json:"meals_count"`
	WorkoutsCount    int    `json:"workouts_count"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ParseDate parses a YYYY-MM-DD query parameter as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (format: YYYY-MM-DD)", s)
	}
	return t, nil
}

type foodTotals struct {
	Calories int
	Protein  int
	Carbs    int
	Fat      int
	Count    int
}

type workoutTotals struct {
	Burned   int
	Duration int
	Count    int
}

// Daily sums logs for the single day starting at date, running the two
// aggregates in parallel.
func (s *Service) Daily(ctx context.Context, userID uuid.UUID, date time.Time) (*DaySummary, error) {
	next := date.AddDate(0, 0, 1)

	var food foodTotals
	var workout workoutTotals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.WithContext(gctx).
			Model(&models.FoodLog{}).
			Select(`COALESCE(SUM(calories), 0) AS calories,
				COALESCE(SUM(protein_grams), 0) AS protein,
				COALESCE(SUM(carbs_grams), 0) AS carbs,
				COALESCE(SUM(fat_grams), 0) AS fat,
				COUNT(*) AS count`).
			Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, date, next).
			Scan(&food).Error
		if err != nil {
			return fmt.Errorf("aggregate food logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.db.WithContext(gctx).
			Model(&models.WorkoutLog{}).
			Select(`COALESCE(SUM(calories_burned_estimated), 0) AS burned,
				COALESCE(SUM(duration_minutes), 0) AS duration,
				COUNT(*) AS count`).
			Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, date, next).
			Scan(&workout).Error
		if err != nil {
			return fmt.Errorf("aggregate workout logs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DaySummary{
		Date:             date.Format("2006-01-02"),
		TotalCalories:    food.Calories,
		TotalProtein:     food.Protein,
		TotalCarbs:       food.Carbs,
		TotalFat:         food.Fat,
		CaloriesBurned:   workout.Burned,
		ExerciseDuration: workout.Duration,
		MealsCount:       food.Count,
		WorkoutsCount:    workout.Count,
	}, nil
}

// Weekly buckets logs per day over [startDate, endDate] and returns
// the days in ascending order. Days with no activity are omitted.
func (s *Service) Weekly(ctx context.Context, userID uuid.UUID, startDate, endDate time.Time) ([]DaySummary, error) {
	end := endDate.AddDate(0, 0, 1)

	var foodLogs []models.FoodLog
	var workoutLogs []models.WorkoutLog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.WithContext(gctx).
			Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, startDate, end).
			Find(&foodLogs).Error
		if err != nil {
			return fmt.Errorf("load food logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.db.WithContext(gctx).
			Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, startDate, end).
			Find(&workoutLogs).Error
		if err != nil {
			return fmt.Errorf("load workout logs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	days := map[string]*DaySummary{}
	bucket := func(t time.Time) *DaySummary {
		key := t.UTC().Format("2006-01-02")
		day, ok := days[key]
		if !ok {
			day = &DaySummary{Date: key}
			days[key] = day
		}
		return day
	}

	for _, log := range foodLogs {
		day := bucket(log.EatenAt)
		day.TotalCalories += log.Calories
		day.TotalProtein += log.ProteinGrams
		day.TotalCarbs += log.CarbsGrams
		day.TotalFat += log.FatGrams
		day.MealsCount++
	}
	for _, log := range workoutLogs {
		day := bucket(log.CompletedAt)
		day.CaloriesBurned += log.CaloriesBurnedEstimated
		day.ExerciseDuration += log.DurationMinutes
		day.WorkoutsCount++
	}

	result := make([]DaySummary, 0, len(days))
	for _, day := range days {
		result = append(result, *day)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}
