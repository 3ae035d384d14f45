// Package mealplan generates a 7-day meal plan, degrading to a local
// template when the model cannot deliver one.
package mealplan

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"text/template"
	"time"

	"github.com/google/uuid"

	"fittrack-backend/internal/llm"
	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/models"
	"fittrack-backend/internal/nutrition"
	"fittrack-backend/internal/profile"
)

//go:embed meal_prompt.md
var mealPrompt string

type Meal struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
}

type Day struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Breakfast Meal   `json:"breakfast"`
	Lunch     Meal   `json:"lunch"`
	Snack     Meal   `json:"snack"`
	Dinner    Meal   `json:"dinner"`
}

// Result reports where the plan came from so the client can surface
// degraded output.
type Result struct {
	MealPlan       []Day  `json:"mealPlan"`
	TargetCalories int    `json:"targetCalories"`
	Source         string `json:"source"`
}

type Request struct {
	Allergies   string
	Preferences string
}

// ProfileSource loads the profile the plan is personalized with.
type ProfileSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// CallRecorder persists per-call telemetry.
type CallRecorder interface {
	Record(ctx context.Context, entry models.AICallLog)
}

type Service struct {
	profiles ProfileSource
	textGen  llm.TextGenerator
	calls    CallRecorder
	log      *logger.Logger
	now      func() time.Time
}

func NewService(profiles ProfileSource, textGen llm.TextGenerator, calls CallRecorder, log *logger.Logger) *Service {
	return &Service{
		profiles: profiles,
		textGen:  textGen,
		calls:    calls,
		log:      log,
		now:      time.Now,
	}
}

// TargetCalories derives the daily calorie target from the profile,
// shifted for the goal and floored at 1200.
func TargetCalories(user *models.User) int {
	weight := user.WeightKg
	if weight == 0 {
		weight = 65
	}
	height := user.HeightCm
	if height == 0 {
		height = 170
	}
	age := user.Age
	if age == 0 {
		age = 30
	}
	gender := user.Gender
	if gender == "" {
		gender = "male"
	}
	activity := user.ActivityLevel
	if activity == "" {
		activity = "moderately_active"
	}

	tdee := nutrition.TDEE(nutrition.BMR(weight, height, age, gender), activity)
	if tdee <= 0 || math.IsNaN(tdee) {
		tdee = 2000
	}

	target := tdee
	switch user.Goal {
	case "weight_loss":
		target = tdee - 500
	case "muscle_gain":
		target = tdee + 300
	}
	rounded := int(math.Round(target))
	if rounded < 1200 {
		rounded = 1200
	}
	return rounded
}

// Generate builds a week of meals for the user. Upstream or parse
// failures fall back to the local template plan; only a missing
// profile is an error.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, req Request) (*Result, error) {
	user, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	target := TargetCalories(user)
	prompt, err := buildMealPrompt(user, target, req)
	if err != nil {
		return nil, fmt.Errorf("build meal prompt: %w", err)
	}

	days, genErr := s.generateDays(ctx, prompt)
	if genErr != nil {
		s.log.Warn("Meal plan generation failed, using fallback", "error", genErr)
		return &Result{MealPlan: s.fallbackWeek(), TargetCalories: target, Source: "fallback"}, nil
	}
	return &Result{MealPlan: days, TargetCalories: target, Source: "ai"}, nil
}

// FallbackResult is the template week with a generic 2000 kcal target,
// served when even the profile-derived target is unavailable.
func (s *Service) FallbackResult() *Result {
	return &Result{MealPlan: s.fallbackWeek(), TargetCalories: 2000, Source: "fallback"}
}

func (s *Service) generateDays(ctx context.Context, prompt string) ([]Day, error) {
	start := s.now()
	resp, err := s.textGen.GenerateContent(ctx, llm.TextRequest(prompt, llm.GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 2048,
	}))
	if err != nil {
		s.recordCall(ctx, llm.TokenUsage{}, start, true)
		return nil, err
	}

	days, parseErr := parseDays(resp.Content)
	s.recordCall(ctx, resp.Usage, start, parseErr != nil)
	return days, parseErr
}

func parseDays(content string) ([]Day, error) {
	text, err := llm.ExtractArray(content)
	if err != nil {
		return nil, err
	}

	var days []Day
	if err := json.Unmarshal([]byte(text), &days); err == nil && len(days) > 0 {
		return days, nil
	}

	// Some answers wrap the week in an object.
	var wrapped struct {
		Days []Day `json:"days"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse meal plan: %w (response: %s)", err, text)
	}
	if len(wrapped.Days) == 0 {
		return nil, errors.New("model returned empty plan")
	}
	return wrapped.Days, nil
}

type promptData struct {
	Goal           string
	TargetCalories int
	Allergies      string
	Preferences    string
}

func buildMealPrompt(user *models.User, target int, req Request) (string, error) {
	goal := user.Goal
	if goal == "" {
		goal = "maintenance"
	}
	allergies := req.Allergies
	if allergies == "" {
		allergies = "None"
	}
	preferences := req.Preferences
	if preferences == "" {
		preferences = "Balanced diet"
	}

	tmpl, err := template.New("MealPlan").Parse(mealPrompt)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, promptData{
		Goal:           goal,
		TargetCalories: target,
		Allergies:      allergies,
		Preferences:    preferences,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) recordCall(ctx context.Context, usage llm.TokenUsage, start time.Time, fallback bool) {
	if s.calls == nil {
		return
	}
	s.calls.Record(ctx, models.AICallLog{
		Endpoint:         "meal-plan",
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        s.now().Sub(start).Milliseconds(),
		Fallback:         fallback,
	})
}
