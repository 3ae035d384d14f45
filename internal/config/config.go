package config

import (
	"fmt"
	"os"
)

const (
	defaultGeminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel  = "gemini-2.5-flash"
)

// Config holds the configuration for the application.
type Config struct {
	Port        string
	LogMode     string
	JWTSecret   string
	DatabaseDSN string

	GeminiAPIKey string
	GeminiModel  string
	GeminiAPIURL string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	databaseDSN := os.Getenv("DATABASE_DSN")
	if databaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN environment variable not set")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = defaultGeminiModel
	}

	geminiAPIURL := os.Getenv("GEMINI_API_URL")
	if geminiAPIURL == "" {
		geminiAPIURL = defaultGeminiAPIURL
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "dev"
	}

	return &Config{
		Port:         port,
		LogMode:      logMode,
		JWTSecret:    jwtSecret,
		DatabaseDSN:  databaseDSN,
		GeminiAPIKey: geminiAPIKey,
		GeminiModel:  geminiModel,
		GeminiAPIURL: geminiAPIURL,
	}, nil
}
