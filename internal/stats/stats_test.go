package stats

import (
	"context"
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
	if err := db.AutoMigrate(&models.FoodLog{}, &models.WorkoutLog{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedDay(t *testing.T, db *gorm.DB, userID uuid.UUID, day time.Time) {
	t.Helper()
	meals := []models.FoodLog{
		{UserID: userID, EatenAt: day.Add(8 * time.Hour), MealType: "breakfast", FoodName: "Phở gà", Calories: 450, ProteinGrams: 30, CarbsGrams: 55, FatGrams: 10},
		{UserID: userID, EatenAt: day.Add(12 * time.Hour), MealType: "lunch", FoodName: "Cơm tấm", Calories: 700, ProteinGrams: 40, CarbsGrams: 80, FatGrams: 20},
	}
	if err := db.Create(&meals).Error; err != nil {
		t.Fatalf("Failed to seed food logs: %v", err)
	}
	workout := models.WorkoutLog{
		UserID: userID, CompletedAt: day.Add(18 * time.Hour),
		Name: "HIIT Fat Burn", DurationMinutes: 25, CaloriesBurnedEstimated: 300,
	}
	if err := db.Create(&workout).Error; err != nil {
		t.Fatalf("Failed to seed workout log: %v", err)
	}
}

func TestDaily(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	day := time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC)

	seedDay(t, db, userID, day)
	// Next-day entry must not leak into the 16th.
	if err := db.Create(&models.FoodLog{
		UserID: userID, EatenAt: day.AddDate(0, 0, 1), MealType: "breakfast", FoodName: "Bánh mì", Calories: 265,
	}).Error; err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	// Other users are invisible.
	if err := db.Create(&models.FoodLog{
		UserID: uuid.New(), EatenAt: day.Add(9 * time.Hour), MealType: "breakfast", FoodName: "Xôi", Calories: 400,
	}).Error; err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	got, err := svc.Daily(ctx, userID, day)
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	want := DaySummary{
		Date:          "2024-12-16",
		TotalCalories: 1150, TotalProtein: 70, TotalCarbs: 135, TotalFat: 30,
		CaloriesBurned: 300, ExerciseDuration: 25,
		MealsCount: 2, WorkoutsCount: 1,
	}
	if *got != want {
		t.Errorf("Daily mismatch:\n got %+v\nwant %+v", *got, want)
	}
}

func TestDailyEmpty(t *testing.T) {
	svc := NewService(openTestDB(t))
	day := time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC)

	got, err := svc.Daily(context.Background(), uuid.New(), day)
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if got.TotalCalories != 0 || got.MealsCount != 0 || got.WorkoutsCount != 0 {
		t.Errorf("Expected zero totals, got %+v", got)
	}
	if got.Date != "2024-12-16" {
		t.Errorf("Expected echoed date, got %s", got.Date)
	}
}

func TestWeekly(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	svc := NewService(db)
	userID := uuid.New()

	monday := time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC)
	wednesday := monday.AddDate(0, 0, 2)
	seedDay(t, db, userID, wednesday)
	seedDay(t, db, userID, monday)

	got, err := svc.Weekly(ctx, userID, monday, monday.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("Weekly failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 active days, got %d", len(got))
	}
	if got[0].Date != "2024-12-16" || got[1].Date != "2024-12-18" {
		t.Errorf("Days not sorted ascending: %s, %s", got[0].Date, got[1].Date)
	}
	for _, day := range got {
		if day.TotalCalories != 1150 || day.MealsCount != 2 || day.WorkoutsCount != 1 {
			t.Errorf("Unexpected totals for %s: %+v", day.Date, day)
		}
	}
}

func TestWeeklyEndDateInclusive(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	svc := NewService(db)
	userID := uuid.New()

	sunday := time.Date(2024, 12, 22, 0, 0, 0, 0, time.UTC)
	seedDay(t, db, userID, sunday)

	got, err := svc.Weekly(ctx, userID, sunday.AddDate(0, 0, -6), sunday)
	if err != nil {
		t.Fatalf("Weekly failed: %v", err)
	}
	if len(got) != 1 || got[0].Date != "2024-12-22" {
		t.Errorf("End date should be inclusive, got %+v", got)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-12-16")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if !got.Equal(time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date: %v", got)
	}
	if _, err := ParseDate("16/12/2024"); err == nil {
		t.Error("Expected error for wrong format")
	}
}
