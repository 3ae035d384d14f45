package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/models"
)

// DB provides a centralized database handle.
type DB struct {
	Gorm *gorm.DB
}

// New connects to Postgres and migrates the schema.
func New(dsn string, log *logger.Logger) (*DB, error) {
	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations applied")

	return &DB{Gorm: db}, nil
}

// Migrate creates or updates all application tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.FoodLog{},
		&models.WorkoutLog{},
		&models.ExercisePlanCache{},
		&models.AIFeedback{},
		&models.AICallLog{},
	)
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
