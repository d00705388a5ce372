package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func register(t *testing.T, id string, up func(*gorm.DB) error) {
	t.Helper()
	Register(id, up, nil)
	t.Cleanup(func() { delete(registry, id) })
}

func TestRunMigrationsAppliesEachMigrationOnce(t *testing.T) {
	db := newTestDB(t)

	runs := 0
	register(t, "2026_08_01_test_counter", func(*gorm.DB) error {
		runs++
		return nil
	})

	require.NoError(t, RunMigrations(db))
	require.NoError(t, RunMigrations(db))
	assert.Equal(t, 1, runs)

	var records []MigrationRecord
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 1)
	assert.Equal(t, "2026_08_01_test_counter", records[0].ID)
}

func TestRunMigrationsOrdersByID(t *testing.T) {
	db := newTestDB(t)

	var order []string
	register(t, "2026_08_02_second", func(*gorm.DB) error {
		order = append(order, "second")
		return nil
	})
	register(t, "2026_08_01_first", func(*gorm.DB) error {
		order = append(order, "first")
		return nil
	})

	require.NoError(t, RunMigrations(db))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestLoadSQLMigrationsRegistersAndRuns(t *testing.T) {
	dir := t.TempDir()
	sqlFile := filepath.Join(dir, "2026_08_03_wellness_tips.sql")
	require.NoError(t, os.WriteFile(sqlFile, []byte("CREATE TABLE wellness_tips (id INTEGER PRIMARY KEY, body TEXT);"), 0644))

	require.NoError(t, LoadSQLMigrations(dir))
	t.Cleanup(func() { delete(registry, "2026_08_03_wellness_tips") })

	db := newTestDB(t)
	require.NoError(t, RunMigrations(db))
	assert.True(t, db.Migrator().HasTable("wellness_tips"))
}

func TestLoadSQLMigrationsMissingDirIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadSQLMigrations(filepath.Join(t.TempDir(), "absent")))
}
