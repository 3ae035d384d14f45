package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"fittrack-backend/internal/llm"
	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/models"
	"fittrack-backend/internal/nutrition"
	"fittrack-backend/internal/profile"
)

//go:embed exercise_prompt.md
var exercisePrompt string

// ProfileSource loads the profile a plan is personalized with.
type ProfileSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// PlanCache stores finished plans keyed per user and request shape.
type PlanCache interface {
	Lookup(ctx context.Context, userID uuid.UUID, cacheKey string) (*Plan, bool, error)
	Store(ctx context.Context, userID uuid.UUID, cacheKey string, plan Plan, expiresAt time.Time) error
}

// CallRecorder persists per-call telemetry for generation attempts.
type CallRecorder interface {
	Record(ctx context.Context, entry models.AICallLog)
}

type PlanRequest struct {
	DailyIntake int
	UserQuery   string
}

type Service struct {
	profiles ProfileSource
	cache    PlanCache
	textGen  llm.TextGenerator
	calls    CallRecorder
	log      *logger.Logger
	now      func() time.Time
}

func NewService(profiles ProfileSource, cache PlanCache, textGen llm.TextGenerator, calls CallRecorder, log *logger.Logger) *Service {
	return &Service{
		profiles: profiles,
		cache:    cache,
		textGen:  textGen,
		calls:    calls,
		log:      log,
		now:      time.Now,
	}
}

const cacheTTL = 24 * time.Hour

// cacheKey pins a plan to the calendar day and intake it was built
// for, so a changed intake regenerates while repeats are served from
// the cache.
func (s *Service) cacheKey(userID uuid.UUID, dailyIntake int) string {
	return fmt.Sprintf("aiPlan_%s_%d_%s", s.now().Format("Mon Jan 2 2006"), dailyIntake, userID)
}

// GeneratePlan returns the cached plan for today's intake when one is
// fresh, otherwise asks the model for a new one, validates it against
// the workout catalog and caches the result. Upstream failures degrade
// to FallbackPlan; only a missing profile is an error.
func (s *Service) GeneratePlan(ctx context.Context, userID uuid.UUID, req PlanRequest) (Plan, error) {
	prof, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return Plan{}, err
		}
		return Plan{}, fmt.Errorf("load profile: %w", err)
	}

	key := s.cacheKey(userID, req.DailyIntake)
	if cached, ok, err := s.cache.Lookup(ctx, userID, key); err != nil {
		s.log.Warn("Plan cache lookup failed", "error", err)
	} else if ok {
		s.log.Debug("Plan cache hit", "user_id", userID, "cache_key", key)
		return *cached, nil
	}

	prompt, err := buildExercisePrompt(prof, req)
	if err != nil {
		return Plan{}, fmt.Errorf("build exercise prompt: %w", err)
	}

	start := s.now()
	resp, err := s.textGen.GenerateContent(ctx, llm.TextRequest(
		"Return only valid JSON. No explanations.\n\n"+prompt,
		llm.GenerationConfig{Temperature: 0.4, TopP: 0.9, MaxOutputTokens: 1000},
	))
	if err != nil {
		s.log.Error("Exercise plan generation failed", "error", err)
		s.recordCall(ctx, llm.TokenUsage{}, start, true)
		return FallbackPlan(), nil
	}

	plan, parsed := s.parsePlan(resp.Content)
	s.recordCall(ctx, resp.Usage, start, !parsed)

	expiresAt := s.now().Add(cacheTTL)
	if err := s.cache.Store(ctx, userID, key, plan, expiresAt); err != nil {
		s.log.Warn("Plan cache store failed", "error", err)
	}
	return plan, nil
}

// parsePlan salvages what it can from a model answer. Anything that
// fails to parse collapses to the default plan rather than an error;
// the second return reports whether the answer actually parsed.
func (s *Service) parsePlan(content string) (Plan, bool) {
	text, err := llm.ExtractObject(content)
	if err != nil {
		s.log.Warn("No JSON object in plan response", "error", err)
		return DefaultPlan(), false
	}
	var parsed Plan
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		s.log.Warn("Plan JSON parse failed, using default", "error", err)
		return DefaultPlan(), false
	}
	return NormalizePlan(parsed), true
}

func (s *Service) recordCall(ctx context.Context, usage llm.TokenUsage, start time.Time, fallback bool) {
	if s.calls == nil {
		return
	}
	s.calls.Record(ctx, models.AICallLog{
		Endpoint:         "exercise-plan",
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        s.now().Sub(start).Milliseconds(),
		Fallback:         fallback,
	})
}

type promptData struct {
	Gender         string
	Age            int
	WeightKg       float64
	HeightCm       float64
	BMI            int
	Goal           string
	TDEE           int
	DailyIntake    int
	CaloriePercent int
	UserQuery      string
	Workouts       []string
}

func buildExercisePrompt(user *models.User, req PlanRequest) (string, error) {
	weight := user.WeightKg
	if weight == 0 {
		weight = 70
	}
	height := user.HeightCm
	if height == 0 {
		height = 170
	}
	age := user.Age
	if age == 0 {
		age = 30
	}
	gender := "Male"
	if strings.EqualFold(user.Gender, "female") {
		gender = "Female"
	}

	bmr := nutrition.BMR(weight, height, age, user.Gender)
	tdee := nutrition.TDEE(bmr, "moderately_active")
	percent := 50
	if tdee > 0 {
		percent = int(math.Round(float64(req.DailyIntake) / tdee * 100))
	}
	goal := "Maintenance / Muscle gain"
	if user.Goal == "lose_weight" {
		goal = "Fat loss"
	}
	query := req.UserQuery
	if query == "" {
		query = "Generate today's workout plan"
	}

	data := promptData{
		Gender:         gender,
		Age:            age,
		WeightKg:       weight,
		HeightCm:       height,
		BMI:            int(math.Round(nutrition.BMI(weight, height))),
		Goal:           goal,
		TDEE:           int(math.Round(tdee)),
		DailyIntake:    req.DailyIntake,
		CaloriePercent: percent,
		UserQuery:      query,
		Workouts:       catalog,
	}

	tmpl, err := template.New("ExercisePlan").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		Parse(exercisePrompt)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
