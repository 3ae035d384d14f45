package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"fittrack-backend/internal/chat"
	"fittrack-backend/internal/foodlog"
	"fittrack-backend/internal/llm"
	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/mealplan"
	"fittrack-backend/internal/models"
	"fittrack-backend/internal/nutrition"
	"fittrack-backend/internal/planner"
	"fittrack-backend/internal/profile"
	"fittrack-backend/internal/recognition"
	"fittrack-backend/internal/stats"
	"fittrack-backend/internal/workoutlog"
)

type Handler struct {
	recognizer  *recognition.Service
	planner     *planner.Service
	chat        *chat.Service
	mealPlanner *mealplan.Service
	stats       *stats.Service
	profiles    *profile.Repository
	foodLogs    *foodlog.Repository
	workoutLogs *workoutlog.Repository
	log         *logger.Logger
}

type HandlerConfig struct {
	Recognizer  *recognition.Service
	Planner     *planner.Service
	Chat        *chat.Service
	MealPlanner *mealplan.Service
	Stats       *stats.Service
	Profiles    *profile.Repository
	FoodLogs    *foodlog.Repository
	WorkoutLogs *workoutlog.Repository
	Log         *logger.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		recognizer:  cfg.Recognizer,
		planner:     cfg.Planner,
		chat:        cfg.Chat,
		mealPlanner: cfg.MealPlanner,
		stats:       cfg.Stats,
		profiles:    cfg.Profiles,
		foodLogs:    cfg.FoodLogs,
		workoutLogs: cfg.WorkoutLogs,
		log:         cfg.Log,
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func jsonMarshal(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	return datatypes.JSON(b), err
}

// recordView renders a nutrition record in the client's field names.
func recordView(r nutrition.Record) gin.H {
	return gin.H{
		"foodName": r.FoodName,
		"amount":   r.PortionSize,
		"calories": r.Calories,
		"protein":  r.Protein,
		"carbs":    r.Carbs,
		"fat":      r.Fat,
		"sugar":    r.Sugar,
	}
}

// writeUpstreamError maps a model transport failure onto the response,
// keeping the upstream status. Quota exhaustion carries a machine code
// so clients can message it.
func (h *Handler) writeUpstreamError(c *gin.Context, err error) bool {
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	if statusErr.StatusCode == http.StatusTooManyRequests {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "API đang quá tải. Vui lòng đợi vài giây rồi thử lại.",
			"code":  "RATE_LIMIT_EXCEEDED",
		})
		return true
	}
	c.JSON(statusErr.StatusCode, gin.H{"error": statusErr.Message})
	return true
}

type recognizeBody struct {
	Base64Image    string `json:"base64Image"`
	OverrideName   string `json:"overrideName"`
	OverrideAmount string `json:"overrideAmount"`
	MealType       string `json:"mealType"`
	EatenAt        string `json:"eatenAt"`
}

func (h *Handler) RecognizeFood(c *gin.Context) {
	var body recognizeBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Base64Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing base64Image"})
		return
	}

	record, err := h.recognizer.Recognize(c.Request.Context(), recognition.RecognizeRequest{
		Base64Image:    body.Base64Image,
		OverrideName:   body.OverrideName,
		OverrideAmount: body.OverrideAmount,
	})
	if err != nil {
		if h.writeUpstreamError(c, err) {
			return
		}
		if errors.Is(err, recognition.ErrUnrecognized) {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": recordView(nutrition.DefaultRecord())})
			return
		}
		h.log.Error("Food recognition failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": recordView(record)})
}

func (h *Handler) RecognizeAndSaveFood(c *gin.Context) {
	var body recognizeBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Base64Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing base64Image"})
		return
	}

	var eatenAt *time.Time
	if body.EatenAt != "" {
		t, err := time.Parse(time.RFC3339, body.EatenAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eatenAt timestamp"})
			return
		}
		eatenAt = &t
	}

	record, entry, err := h.recognizer.RecognizeAndSave(c.Request.Context(), userID(c), recognition.SaveRequest{
		RecognizeRequest: recognition.RecognizeRequest{
			Base64Image:    body.Base64Image,
			OverrideName:   body.OverrideName,
			OverrideAmount: body.OverrideAmount,
		},
		MealType: body.MealType,
		EatenAt:  eatenAt,
	})
	if err != nil {
		if h.writeUpstreamError(c, err) {
			return
		}
		if errors.Is(err, recognition.ErrUnrecognized) {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"error":   "Failed to parse nutrition data",
				"data":    recordView(nutrition.DefaultRecord()),
			})
			return
		}
		h.log.Error("Recognize-and-save failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    recordView(record),
		"foodLog": gin.H{
			"id":       entry.ID,
			"eatenAt":  entry.EatenAt,
			"mealType": entry.MealType,
		},
		"message": "Food recognized and saved successfully",
	})
}

func (h *Handler) GenerateExercisePlan(c *gin.Context) {
	var body struct {
		DailyIntake *int   `json:"dailyIntake"`
		UserQuery   string `json:"userQuery"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dailyIntake is required"})
		return
	}
	dailyIntake := 0
	if body.DailyIntake != nil {
		dailyIntake = *body.DailyIntake
	}
	if dailyIntake < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dailyIntake is required"})
		return
	}

	plan, err := h.planner.GeneratePlan(c.Request.Context(), userID(c), planner.PlanRequest{
		DailyIntake: dailyIntake,
		UserQuery:   body.UserQuery,
	})
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User profile not found"})
			return
		}
		// The client renders whatever plan it gets, so even persistence
		// trouble degrades to the canned plan instead of a 5xx.
		h.log.Error("Exercise plan request failed", "error", err)
		c.JSON(http.StatusOK, planner.FallbackPlan())
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) Chat(c *gin.Context) {
	var body struct {
		Message     string               `json:"message"`
		History     []chat.Message       `json:"history"`
		UserProfile *chat.ProfileSummary `json:"userProfile"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := h.chat.Chat(c.Request.Context(), chat.ChatRequest{
		Message: body.Message,
		History: body.History,
		Profile: body.UserProfile,
	})
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"reply": "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại sau! 🙏"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) GenerateMealPlan(c *gin.Context) {
	var body struct {
		Allergies   string `json:"allergies"`
		Preferences string `json:"preferences"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.mealPlanner.Generate(c.Request.Context(), userID(c), mealplan.Request{
		Allergies:   body.Allergies,
		Preferences: body.Preferences,
	})
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("Meal plan request failed", "error", err)
		c.JSON(http.StatusOK, h.mealPlanner.FallbackResult())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetAIContext(c *gin.Context) {
	bundle, err := h.profiles.BuildContext(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User profile not found"})
			return
		}
		h.log.Error("Context build failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build AI context"})
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (h *Handler) SaveFeedback(c *gin.Context) {
	var body struct {
		PlanSummary string         `json:"planSummary"`
		PlanPayload map[string]any `json:"planPayload"`
		Rating      int            `json:"rating"`
		Comment     string         `json:"comment"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Rating < 1 || body.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	fb := &models.AIFeedback{
		UserID:      userID(c),
		PlanSummary: body.PlanSummary,
		Rating:      body.Rating,
		Comment:     body.Comment,
	}
	if body.PlanPayload != nil {
		payload, err := jsonMarshal(body.PlanPayload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid planPayload"})
			return
		}
		fb.PlanPayload = payload
	}
	if err := h.profiles.SaveFeedback(c.Request.Context(), fb); err != nil {
		h.log.Error("Feedback save failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": fb.ID})
}

func (h *Handler) GetDailyStatistics(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date parameter is required (format: YYYY-MM-DD)"})
		return
	}
	day, err := stats.ParseDate(date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.stats.Daily(c.Request.Context(), userID(c), day)
	if err != nil {
		h.log.Error("Daily statistics failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch daily statistics"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetWeeklyStatistics(c *gin.Context) {
	startDate, endDate := c.Query("startDate"), c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate parameters are required (format: YYYY-MM-DD)"})
		return
	}
	start, err := stats.ParseDate(startDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := stats.ParseDate(endDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	days, err := h.stats.Weekly(c.Request.Context(), userID(c), start, end)
	if err != nil {
		h.log.Error("Weekly statistics failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch weekly statistics"})
		return
	}
	c.JSON(http.StatusOK, days)
}

func (h *Handler) CreateFoodLog(c *gin.Context) {
	var body struct {
		EatenAt      string `json:"eatenAt"`
		MealType     string `json:"mealType"`
		FoodName     string `json:"foodName"`
		Calories     int    `json:"calories"`
		ProteinGrams int    `json:"proteinGrams"`
		CarbsGrams   int    `json:"carbsGrams"`
		FatGrams     int    `json:"fatGrams"`
		SugarGrams   int    `json:"sugarGrams"`
		Amount       string `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.FoodName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "foodName is required"})
		return
	}

	eatenAt := time.Now()
	if body.EatenAt != "" {
		t, err := time.Parse(time.RFC3339, body.EatenAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eatenAt timestamp"})
			return
		}
		eatenAt = t
	}
	mealType := body.MealType
	if mealType == "" {
		mealType = "Meal"
	}

	entry := &models.FoodLog{
		UserID:       userID(c),
		EatenAt:      eatenAt,
		MealType:     mealType,
		FoodName:     body.FoodName,
		Calories:     body.Calories,
		ProteinGrams: body.ProteinGrams,
		CarbsGrams:   body.CarbsGrams,
		FatGrams:     body.FatGrams,
		SugarGrams:   body.SugarGrams,
		Amount:       body.Amount,
	}
	if err := h.foodLogs.Create(c.Request.Context(), entry); err != nil {
		h.log.Error("Food log create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create food log"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) ListFoodLogs(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date parameter is required (format: YYYY-MM-DD)"})
		return
	}
	day, err := stats.ParseDate(date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.foodLogs.ListByDay(c.Request.Context(), userID(c), day)
	if err != nil {
		h.log.Error("Food log list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list food logs"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) UpdateFoodLog(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid food log id"})
		return
	}
	var updates foodlog.Updates
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update payload"})
		return
	}

	entry, err := h.foodLogs.Update(c.Request.Context(), userID(c), uint(id), updates)
	if err != nil {
		if errors.Is(err, foodlog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Food log entry not found"})
			return
		}
		h.log.Error("Food log update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update food log"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteFoodLog(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid food log id"})
		return
	}

	if err := h.foodLogs.Delete(c.Request.Context(), userID(c), uint(id)); err != nil {
		if errors.Is(err, foodlog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Food log entry not found"})
			return
		}
		h.log.Error("Food log delete failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete food log"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateWorkoutLog(c *gin.Context) {
	var body struct {
		CompletedAt             string `json:"completedAt"`
		Name                    string `json:"name"`
		DurationMinutes         int    `json:"durationMinutes"`
		CaloriesBurnedEstimated int    `json:"caloriesBurnedEstimated"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	completedAt := time.Now()
	if body.CompletedAt != "" {
		t, err := time.Parse(time.RFC3339, body.CompletedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completedAt timestamp"})
			return
		}
		completedAt = t
	}

	entry := &models.WorkoutLog{
		UserID:                  userID(c),
		CompletedAt:             completedAt,
		Name:                    body.Name,
		DurationMinutes:         body.DurationMinutes,
		CaloriesBurnedEstimated: body.CaloriesBurnedEstimated,
	}
	if err := h.workoutLogs.Create(c.Request.Context(), entry); err != nil {
		h.log.Error("Workout log create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workout log"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) ListWorkoutLogs(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date parameter is required (format: YYYY-MM-DD)"})
		return
	}
	day, err := stats.ParseDate(date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.workoutLogs.ListByDay(c.Request.Context(), userID(c), day)
	if err != nil {
		h.log.Error("Workout log list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workout logs"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
