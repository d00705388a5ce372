// Package migrations runs versioned SQL migrations ahead of GORM's
// auto-migration, for changes auto-migration cannot express.
package migrations

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rmsalud/salud-api/internal/logger"
	"gorm.io/gorm"
)

// Migration is a registered schema change.
type Migration struct {
	ID   string
	Up   func(*gorm.DB) error
	Down func(*gorm.DB) error
}

var registry = make(map[string]Migration)

// Register adds a migration to the registry.
func Register(id string, up, down func(*gorm.DB) error) {
	registry[id] = Migration{ID: id, Up: up, Down: down}
}

// MigrationRecord marks a migration as executed.
type MigrationRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// RunMigrations executes all pending migrations in ID order.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var ids []string
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}
	done := make(map[string]bool, len(executed))
	for _, m := range executed {
		done[m.ID] = true
	}

	for _, id := range ids {
		if done[id] {
			continue
		}
		logger.Info("Running migration", "id", id)
		if err := registry[id].Up(db); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", id, err)
		}
		if err := db.Create(&MigrationRecord{ID: id}).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", id, err)
		}
	}
	return nil
}

// LoadSQLMigrations registers every .sql file in dir as an up migration.
// The statements run against whichever database RunMigrations receives.
func LoadSQLMigrations(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		id := strings.TrimSuffix(file.Name(), ".sql")
		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}
		Register(id, func(db *gorm.DB) error {
			return db.Exec(string(content)).Error
		}, nil)
	}
	return nil
}
