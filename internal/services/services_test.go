package services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rmsalud/salud-api/internal/database"
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
	require.NoError(t, database.Migrate(db))
	return db
}

// newTestUser creates a user with a complete profile.
func newTestUser(t *testing.T, db *gorm.DB, email string) *database.User {
	t.Helper()
	age, weight, height, sex := 30, 80.0, 175.0, "M"
	user := &database.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		Age:          &age,
		WeightKg:     &weight,
		HeightCm:     &height,
		Sex:          &sex,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func ctx() context.Context {
	return context.Background()
}
