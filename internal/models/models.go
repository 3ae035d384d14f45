package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User carries the profile fields the AI pipeline reads. Account management
// (registration, credentials) lives in a separate service.
type User struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email               string    `gorm:"uniqueIndex;not null" json:"email"`
	Age                 int       `json:"age"`
	Gender              string    `json:"gender"`
	HeightCm            float64   `gorm:"column:height_cm" json:"heightCm"`
	WeightKg            float64   `gorm:"column:weight_kg" json:"weightKg"`
	Goal                string    `json:"goal"`
	ActivityLevel       string    `json:"activityLevel"`
	ExercisePreferences string    `json:"exercisePreferences"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// FoodLog is a single logged meal. Numeric fields are whole grams/kcal,
// already normalized before they get here.
type FoodLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	EatenAt      time.Time `gorm:"index;not null" json:"eatenAt"`
	MealType     string    `gorm:"not null" json:"mealType"`
	FoodName     string    `gorm:"not null" json:"foodName"`
	Calories     int       `json:"calories"`
	ProteinGrams int       `json:"proteinGrams"`
	CarbsGrams   int       `json:"carbsGrams"`
	FatGrams     int       `json:"fatGrams"`
	SugarGrams   int       `json:"sugarGrams"`
	Amount       string    `json:"amount"`
	IsCorrected  bool      `json:"isCorrected"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (FoodLog) TableName() string { return "food_logs" }

// WorkoutLog records a completed workout session.
type WorkoutLog struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	UserID                  uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	CompletedAt             time.Time `gorm:"index;not null" json:"completedAt"`
	Name                    string    `gorm:"not null" json:"name"`
	DurationMinutes         int       `json:"durationMinutes"`
	CaloriesBurnedEstimated int       `json:"caloriesBurnedEstimated"`
	CreatedAt               time.Time `json:"createdAt"`
}

func (WorkoutLog) TableName() string { return "workout_logs" }

// ExercisePlanCache stores one generated plan per (user, cache key). The row
// is advisory: concurrent producers may race and the later upsert wins.
type ExercisePlanCache struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_plan_cache_user_key" json:"userId"`
	CacheKey  string         `gorm:"not null;uniqueIndex:idx_plan_cache_user_key" json:"cacheKey"`
	Plan      datatypes.JSON `gorm:"not null" json:"plan"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (ExercisePlanCache) TableName() string { return "exercise_plan_cache" }

// AIFeedback is a user's rating of a generated plan, fed back into prompt
// context on later requests.
type AIFeedback struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	PlanSummary string         `json:"planSummary"`
	PlanPayload datatypes.JSON `json:"planPayload"`
	Rating      int            `json:"rating"`
	Comment     string         `json:"comment"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (AIFeedback) TableName() string { return "ai_feedback" }

// AICallLog records one call to the generative model, including calls that
// ended in a canned fallback. Lets silent degradation show up in queries.
type AICallLog struct {
	ID               uint      `gorm:"primaryKey"`
	Endpoint         string    `gorm:"index;not null"`
	Model            string    `gorm:"not null"`
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Fallback         bool      `gorm:"index"`
	CreatedAt        time.Time `gorm:"index"`
}

func (AICallLog) TableName() string { return "ai_call_logs" }
