package services

import (
	"testing"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.Register(ctx(), RegisterInput{
		Email:     "Ana@Example.com",
		Password:  "supersecret",
		FirstName: "Ana",
		LastName:  "Rojas",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	assert.False(t, user.ProfileComplete())

	got, err := svc.Authenticate(ctx(), "ana@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = svc.Authenticate(ctx(), "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.Register(ctx(), RegisterInput{Email: "ana@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx(), RegisterInput{Email: "ANA@example.com", Password: "othersecret"})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.Register(ctx(), RegisterInput{Email: "not-an-email", Password: "supersecret"})
	assert.Error(t, err)

	_, err = svc.Register(ctx(), RegisterInput{Email: "ana@example.com", Password: "short"})
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user, err := svc.Register(ctx(), RegisterInput{Email: "ana@example.com", Password: "supersecret"})
	require.NoError(t, err)

	age, weight, height, sex := 28, 62.5, 164.0, "F"
	updated, err := svc.UpdateProfile(ctx(), user.ID, ProfileUpdate{
		Age: &age, WeightKg: &weight, HeightCm: &height, Sex: &sex,
	})
	require.NoError(t, err)
	assert.True(t, updated.ProfileComplete())

	profile := MetabolicProfile(updated)
	assert.True(t, profile.Complete())
	assert.Equal(t, 62.5, profile.WeightKg)

	// Partial update keeps the rest.
	newWeight := 61.0
	updated, err = svc.UpdateProfile(ctx(), user.ID, ProfileUpdate{WeightKg: &newWeight})
	require.NoError(t, err)
	assert.Equal(t, 61.0, *updated.WeightKg)
	assert.Equal(t, 28, *updated.Age)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	user, err := svc.Register(ctx(), RegisterInput{Email: "ana@example.com", Password: "supersecret"})
	require.NoError(t, err)

	badAge := 0
	_, err = svc.UpdateProfile(ctx(), user.ID, ProfileUpdate{Age: &badAge})
	assert.Error(t, err)

	badSex := "X"
	_, err = svc.UpdateProfile(ctx(), user.ID, ProfileUpdate{Sex: &badSex})
	assert.Error(t, err)

	badWeight := -1.0
	_, err = svc.UpdateProfile(ctx(), user.ID, ProfileUpdate{WeightKg: &badWeight})
	assert.Error(t, err)
}

func TestListAndDeleteUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	newTestUser(t, db, "ana@example.com")
	bob := newTestUser(t, db, "bob@example.com")

	all, err := svc.ListUsers(ctx(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := svc.ListUsers(ctx(), "bob")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, bob.ID, matched[0].ID)

	require.NoError(t, svc.DeleteUser(ctx(), bob.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx(), bob.ID), apperrors.ErrRecordNotFound)
}
