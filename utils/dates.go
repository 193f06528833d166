// utils/dates.go
package utils

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")
var ErrInvalidTime = errors.New("invalid time")

// Accepted input layouts, most specific first.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2 2006",
	"January 2, 2006",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04:05.999999",
	"15:04",
}

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a calendar date and returns it as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	// Full timestamps are accepted and truncated to their date
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrInvalidDate
}

// ParseTimeOfDay parses a wall-clock time and returns the offset since midnight.
func ParseTimeOfDay(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidTime
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Sub(BeginningOfDay(t)), nil
		}
	}
	return 0, ErrInvalidTime
}
