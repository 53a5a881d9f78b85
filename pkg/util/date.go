package util

import (
	"time"
)

// DateLayout is the calendar-day format used across the pricing API.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar day in DateLayout, in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a calendar day in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay truncates a time to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts the inclusive number of calendar days from a to b.
// Returns 0 when b is before a.
func DaysBetween(a, b time.Time) int {
	a, b = StartOfDay(a), StartOfDay(b)
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a)/(24*time.Hour)) + 1
}
