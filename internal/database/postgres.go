// Package database owns the GORM models and the PostgreSQL connection.
package database

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/rmsalud/salud-api/internal/config"
	"github.com/rmsalud/salud-api/internal/database/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresDB connects to PostgreSQL and brings the schema up to date.
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("failed to get current file path")
	}
	migrationsDir := filepath.Join(filepath.Dir(filename), "migrations")

	if err := migrations.LoadSQLMigrations(migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate auto-migrates the schema for all models. Exposed separately so
// tests can run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Activity{}, &Meal{}, &WeightGoal{}, &EventRequest{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
