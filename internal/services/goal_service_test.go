package services

import (
	"testing"
	"time"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/metabolic"
	"github.com/rmsalud/salud-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(utils.DateLayout)
}

func TestCreateGoalDerivesPlan(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "ana@example.com")
	svc := NewGoalService(db)

	view, err := svc.Create(ctx(), user.ID, GoalInput{
		CurrentWeightKg: 80,
		TargetWeightKg:  75,
		TargetDate:      futureDate(50),
		ActivityLevel:   "moderate",
	})
	require.NoError(t, err)

	assert.True(t, view.Goal.Active)
	assert.Equal(t, metabolic.GoalLoss, view.GoalType)
	assert.Equal(t, 50, view.TotalDays)
	assert.Equal(t, 50, view.DaysRemaining)
	assert.InDelta(t, 1748.75, view.Goal.BMR, 0.01)
	assert.InDelta(t, 2710.56, view.Goal.TDEE, 0.01)
	assert.InDelta(t, 770, view.Goal.DailyDelta, 0.01)
	assert.Equal(t, metabolic.PaceHealthy, view.Pace)
	assert.NotEmpty(t, view.Advisory)
}

func TestCreateGoalArchivesPrevious(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "ana@example.com")
	svc := NewGoalService(db)

	first, err := svc.Create(ctx(), user.ID, GoalInput{
		CurrentWeightKg: 80, TargetWeightKg: 75, TargetDate: futureDate(60), ActivityLevel: "light",
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx(), user.ID, GoalInput{
		CurrentWeightKg: 79, TargetWeightKg: 74, TargetDate: futureDate(90), ActivityLevel: "light",
	})
	require.NoError(t, err)

	active, err := svc.Active(ctx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Goal.ID, active.Goal.ID)

	var archived database.WeightGoal
	require.NoError(t, db.First(&archived, first.Goal.ID).Error)
	assert.False(t, archived.Active)

	var activeCount int64
	require.NoError(t, db.Model(&database.WeightGoal{}).
		Where("user_id = ? AND active = ?", user.ID, true).
		Count(&activeCount).Error)
	assert.EqualValues(t, 1, activeCount)
}

func TestActiveWithoutGoal(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "ana@example.com")
	svc := NewGoalService(db)

	_, err := svc.Active(ctx(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveGoal)
}

func TestCreateGoalRequiresCompleteProfile(t *testing.T) {
	db := newTestDB(t)
	incomplete := &database.User{Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(incomplete).Error)
	svc := NewGoalService(db)

	_, err := svc.Create(ctx(), incomplete.ID, GoalInput{
		CurrentWeightKg: 80, TargetWeightKg: 75, TargetDate: futureDate(60), ActivityLevel: "light",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")
}

func TestCreateGoalRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "ana@example.com")
	svc := NewGoalService(db)

	cases := []struct {
		name string
		in   GoalInput
	}{
		{"equal weights", GoalInput{CurrentWeightKg: 80, TargetWeightKg: 80, TargetDate: futureDate(60), ActivityLevel: "light"}},
		{"delta over 50kg", GoalInput{CurrentWeightKg: 130, TargetWeightKg: 70, TargetDate: futureDate(60), ActivityLevel: "light"}},
		{"past date", GoalInput{CurrentWeightKg: 80, TargetWeightKg: 75, TargetDate: "2020-01-01", ActivityLevel: "light"}},
		{"bad date format", GoalInput{CurrentWeightKg: 80, TargetWeightKg: 75, TargetDate: "01/01/2030", ActivityLevel: "light"}},
		{"unknown activity level", GoalInput{CurrentWeightKg: 80, TargetWeightKg: 75, TargetDate: futureDate(60), ActivityLevel: "olympic"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx(), user.ID, tc.in)
			assert.Error(t, err)
		})
	}
}

func TestArchiveIsTerminal(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "ana@example.com")
	svc := NewGoalService(db)

	view, err := svc.Create(ctx(), user.ID, GoalInput{
		CurrentWeightKg: 80, TargetWeightKg: 75, TargetDate: futureDate(60), ActivityLevel: "light",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx(), user.ID, view.Goal.ID))

	_, err = svc.Active(ctx(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveGoal)

	// A second archive finds nothing active to archive.
	assert.ErrorIs(t, svc.Archive(ctx(), user.ID, view.Goal.ID), apperrors.ErrRecordNotFound)
}

func TestGoalHistory(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "ana@example.com")
	svc := NewGoalService(db)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx(), user.ID, GoalInput{
			CurrentWeightKg: 80 - float64(i), TargetWeightKg: 74, TargetDate: futureDate(60 + i), ActivityLevel: "light",
		})
		require.NoError(t, err)
	}

	history, err := svc.List(ctx(), user.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	activeCount := 0
	for _, v := range history {
		if v.Goal.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}
