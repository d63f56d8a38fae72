package model

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf renders a local calendar date string for the given instant.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a "YYYY-MM-DD" string. ok is false for empty or
// malformed input so callers can degrade to "no date".
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween returns the whole calendar days from a to b (positive
// when b is later). Time-of-day and DST shifts are ignored: both ends
// are collapsed to their calendar date first.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
