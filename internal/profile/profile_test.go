package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fittrack-backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.FoodLog{}, &models.AIFeedback{})
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: "test@example.com", Age: 30, Gender: "male"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user.ID
}

func TestGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	userID := seedUser(t, db)

	got, err := repo.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Email != "test@example.com" {
		t.Errorf("Unexpected user: %+v", got)
	}

	_, err = repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestBuildContext(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	userID := seedUser(t, db)

	base := time.Date(2024, 12, 16, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		meal := models.FoodLog{
			UserID: userID, EatenAt: base.Add(time.Duration(i) * time.Hour),
			MealType: "lunch", FoodName: "Cơm", Calories: 500 + i,
		}
		if err := db.Create(&meal).Error; err != nil {
			t.Fatalf("Failed to seed meal: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		fb := models.AIFeedback{UserID: userID, PlanSummary: "plan", Rating: 4}
		if err := db.Create(&fb).Error; err != nil {
			t.Fatalf("Failed to seed feedback: %v", err)
		}
	}

	got, err := repo.BuildContext(context.Background(), userID)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if got.User == nil || got.User.ID != userID {
		t.Errorf("Unexpected user: %+v", got.User)
	}
	if len(got.Meals) != 5 {
		t.Errorf("Expected 5 most recent meals, got %d", len(got.Meals))
	}
	// Most recent first.
	if len(got.Meals) > 1 && got.Meals[0].EatenAt.Before(got.Meals[1].EatenAt) {
		t.Error("Meals not ordered newest first")
	}
	if len(got.Feedback) != 2 {
		t.Errorf("Expected 2 feedback rows, got %d", len(got.Feedback))
	}
}

func TestBuildContextMissingUser(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	_, err := repo.BuildContext(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
