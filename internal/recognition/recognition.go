// Package recognition turns a meal photo into a normalized nutrition
// record, optionally persisting it as a food log entry.
package recognition

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fittrack-backend/internal/llm"
	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/models"
	"fittrack-backend/internal/nutrition"
)

//go:embed food_prompt.md
var foodPrompt string

// ErrUnrecognized reports that the model answered but nothing usable
// could be parsed out of it. Callers decide whether to degrade to a
// default record or to surface the failure.
var ErrUnrecognized = errors.New("no nutrition data in model response")

// FoodLogStore persists recognized meals.
type FoodLogStore interface {
	Create(ctx context.Context, entry *models.FoodLog) error
}

// CallRecorder persists per-call telemetry.
type CallRecorder interface {
	Record(ctx context.Context, entry models.AICallLog)
}

type RecognizeRequest struct {
	Base64Image    string
	OverrideName   string
	OverrideAmount string
}

type SaveRequest struct {
	RecognizeRequest
	MealType string
	EatenAt  *time.Time
}

type Service struct {
	textGen  llm.TextGenerator
	foodLogs FoodLogStore
	calls    CallRecorder
	log      *logger.Logger
	now      func() time.Time
}

func NewService(textGen llm.TextGenerator, foodLogs FoodLogStore, calls CallRecorder, log *logger.Logger) *Service {
	return &Service{
		textGen:  textGen,
		foodLogs: foodLogs,
		calls:    calls,
		log:      log,
		now:      time.Now,
	}
}

// stripDataURI drops a leading "data:image/...;base64," prefix so both
// raw base64 and full data URIs are accepted.
func stripDataURI(image string) string {
	if i := strings.Index(image, "base64,"); i >= 0 {
		return image[i+len("base64,"):]
	}
	return image
}

// Recognize sends the photo to the model and parses the nutrition
// answer. Upstream transport errors pass through untouched so the
// caller can map their status. A response with no parseable object
// returns ErrUnrecognized.
func (s *Service) Recognize(ctx context.Context, req RecognizeRequest) (nutrition.Record, error) {
	imageData := stripDataURI(req.Base64Image)

	start := s.now()
	resp, err := s.textGen.GenerateContent(ctx, llm.ImageRequest(foodPrompt, imageData, llm.GenerationConfig{
		Temperature:     0.1,
		TopP:            0.9,
		TopK:            40,
		MaxOutputTokens: 1000,
	}))
	if err != nil {
		s.recordCall(ctx, llm.TokenUsage{}, start, true)
		return nutrition.Record{}, err
	}

	s.log.Debug("Raw recognition response", "content", resp.Content)

	text, err := llm.ExtractObject(resp.Content)
	if err != nil {
		s.log.Warn("No JSON object in recognition response", "error", err)
		s.recordCall(ctx, resp.Usage, start, true)
		return nutrition.Record{}, ErrUnrecognized
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		s.log.Warn("Recognition JSON parse failed", "error", err)
		s.recordCall(ctx, resp.Usage, start, true)
		return nutrition.Record{}, ErrUnrecognized
	}
	s.recordCall(ctx, resp.Usage, start, false)

	return nutrition.Normalize(raw, nutrition.Overrides{
		FoodName:    req.OverrideName,
		PortionSize: req.OverrideAmount,
	}), nil
}

// RecognizeAndSave recognizes the photo and writes a food log entry
// for the user. Nothing is saved when recognition fails.
func (s *Service) RecognizeAndSave(ctx context.Context, userID uuid.UUID, req SaveRequest) (nutrition.Record, *models.FoodLog, error) {
	record, err := s.Recognize(ctx, req.RecognizeRequest)
	if err != nil {
		return nutrition.Record{}, nil, err
	}

	eatenAt := s.now()
	if req.EatenAt != nil {
		eatenAt = *req.EatenAt
	}
	mealType := req.MealType
	if mealType == "" {
		mealType = "Meal"
	}

	entry := &models.FoodLog{
		UserID:       userID,
		EatenAt:      eatenAt,
		MealType:     mealType,
		FoodName:     record.FoodName,
		Calories:     record.Calories,
		ProteinGrams: record.Protein,
		CarbsGrams:   record.Carbs,
		FatGrams:     record.Fat,
		SugarGrams:   record.Sugar,
		Amount:       record.PortionSize,
		ImageURL:     "data:image/jpeg;base64," + stripDataURI(req.Base64Image),
	}
	if err := s.foodLogs.Create(ctx, entry); err != nil {
		return nutrition.Record{}, nil, fmt.Errorf("save food log: %w", err)
	}
	return record, entry, nil
}

func (s *Service) recordCall(ctx context.Context, usage llm.TokenUsage, start time.Time, fallback bool) {
	if s.calls == nil {
		return
	}
	s.calls.Record(ctx, models.AICallLog{
		Endpoint:         "recognize-food",
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        s.now().Sub(start).Milliseconds(),
		Fallback:         fallback,
	})
}
