package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Handler      *Handler
	Auth         *AuthMiddleware
	AllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:19006"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.Auth.RequireAuth())

	ai := api.Group("/ai")
	{
		ai.POST("/recognize-food", cfg.Handler.RecognizeFood)
		ai.POST("/recognize-and-save", cfg.Handler.RecognizeAndSaveFood)
		ai.POST("/exercise-plan", cfg.Handler.GenerateExercisePlan)
		ai.POST("/chat", cfg.Handler.Chat)
		ai.POST("/meal-plan", cfg.Handler.GenerateMealPlan)
		ai.GET("/context", cfg.Handler.GetAIContext)
		ai.POST("/feedback", cfg.Handler.SaveFeedback)
	}

	statistics := api.Group("/statistics")
	{
		statistics.GET("/daily", cfg.Handler.GetDailyStatistics)
		statistics.GET("/weekly", cfg.Handler.GetWeeklyStatistics)
	}

	foodLogs := api.Group("/food-logs")
	{
		foodLogs.POST("", cfg.Handler.CreateFoodLog)
		foodLogs.GET("", cfg.Handler.ListFoodLogs)
		foodLogs.PUT("/:id", cfg.Handler.UpdateFoodLog)
		foodLogs.DELETE("/:id", cfg.Handler.DeleteFoodLog)
	}

	workoutLogs := api.Group("/workout-logs")
	{
		workoutLogs.POST("", cfg.Handler.CreateWorkoutLog)
		workoutLogs.GET("", cfg.Handler.ListWorkoutLogs)
	}

	return router
}
