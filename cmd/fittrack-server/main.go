package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fittrack-backend/internal/chat"
	"fittrack-backend/internal/config"
	"fittrack-backend/internal/database"
	"fittrack-backend/internal/foodlog"
	"fittrack-backend/internal/llm"
	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/mealplan"
	"fittrack-backend/internal/metrics"
	"fittrack-backend/internal/planner"
	"fittrack-backend/internal/profile"
	"fittrack-backend/internal/recognition"
	"fittrack-backend/internal/server"
	"fittrack-backend/internal/stats"
	"fittrack-backend/internal/workoutlog"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.New(cfg.DatabaseDSN, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	gemini := llm.NewGeminiClient(cfg)

	profiles := profile.NewRepository(db.Gorm)
	foodLogs := foodlog.NewRepository(db.Gorm)
	workoutLogs := workoutlog.NewRepository(db.Gorm)
	planCache := planner.NewCacheRepository(db.Gorm)
	callLog := metrics.NewStore(db.Gorm, appLog)

	handler := server.NewHandler(server.HandlerConfig{
		Recognizer:  recognition.NewService(gemini, foodLogs, callLog, appLog),
		Planner:     planner.NewService(profiles, planCache, gemini, callLog, appLog),
		Chat:        chat.NewService(gemini, callLog, appLog),
		MealPlanner: mealplan.NewService(profiles, gemini, callLog, appLog),
		Stats:       stats.NewService(db.Gorm),
		Profiles:    profiles,
		FoodLogs:    foodLogs,
		WorkoutLogs: workoutLogs,
		Log:         appLog,
	})

	router := server.NewRouter(server.RouterConfig{
		Handler: handler,
		Auth:    server.NewAuthMiddleware(cfg.JWTSecret, appLog),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLog.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("Forced shutdown", "error", err)
	}
}
