// Package utils holds small date helpers shared by services.
package utils

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used across the API.
const DateLayout = "2006-01-02"

// IsToday reports whether a date-like string falls on the local calendar
// date. Only the date prefix is compared, so values with a time component
// ("2025-03-01T18:30:00Z") never shift across midnight through timezone
// conversion. Empty input is never today.
func IsToday(dateStr string) bool {
	if dateStr == "" {
		return false
	}
	datePart, _, _ := strings.Cut(dateStr, "T")
	return datePart == time.Now().Format(DateLayout)
}

// ParseDate parses a calendar date, tolerating a trailing time component.
func ParseDate(dateStr string) (time.Time, error) {
	datePart, _, _ := strings.Cut(dateStr, "T")
	return time.Parse(DateLayout, datePart)
}

// StartOfDay truncates a timestamp to its calendar date at UTC midnight,
// the same form ParseDate produces, so dates from any source compare
// directly.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the local calendar date at UTC midnight.
func Today() time.Time {
	return StartOfDay(time.Now())
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}
