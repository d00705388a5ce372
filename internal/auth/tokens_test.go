package auth

import (
	"testing"
	"time"

	"github.com/rmsalud/salud-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessTTL time.Duration) *Manager {
	return NewManager(config.AuthConfig{
		Secret:     "test-secret",
		AccessTTL:  accessTTL,
		RefreshTTL: time.Hour,
	})
}

func TestIssueAndVerifyPair(t *testing.T) {
	m := newTestManager(time.Minute)

	pair, err := m.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	userID, err := m.VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	userID, err = m.VerifyRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := newTestManager(time.Minute)
	pair, err := m.IssuePair(7)
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.Refresh)
	assert.Error(t, err)
	_, err = m.VerifyRefresh(pair.Access)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := newTestManager(-time.Minute)
	pair, err := m.IssuePair(7)
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.Access)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	m := newTestManager(time.Minute)
	other := NewManager(config.AuthConfig{Secret: "other-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})

	pair, err := other.IssuePair(7)
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.Access)
	assert.Error(t, err)

	_, err = m.VerifyAccess("garbage")
	assert.Error(t, err)
}
