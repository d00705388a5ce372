package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsToday(t *testing.T) {
	today := time.Now().Format(DateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(DateLayout)

	assert.True(t, IsToday(today))
	assert.True(t, IsToday(today+"T00:00:00Z"))
	assert.True(t, IsToday(today+"T23:59:59-04:00"))
	assert.False(t, IsToday(yesterday))
	assert.False(t, IsToday(yesterday+"T12:00:00Z"))
	assert.False(t, IsToday(""))
	assert.False(t, IsToday("not-a-date"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	assert.NoError(t, err)
	assert.Equal(t, 2025, d.Year())

	d, err = ParseDate("2025-03-01T18:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	_, err = ParseDate("01/03/2025")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2025, 3, 1, 23, 59, 59, 0, time.FixedZone("CLT", -4*3600))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.True(t, StartOfDay(time.Now()).Equal(Today()))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, DaysBetween(a, b))
	assert.Equal(t, -10, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}
