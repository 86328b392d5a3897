package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for scheduled times of day.
const TimeLayout = "15:04"

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrValidation)
	}
	t, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return t, nil
}

// ParseClock validates an HH:MM time of day and returns it normalized.
func ParseClock(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	return t.Format(TimeLayout), nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// At combines a calendar date with an HH:MM clock value in loc.
// An unparsable clock yields midnight.
func At(date time.Time, clock string, loc *time.Location) time.Time {
	y, m, d := date.Date()
	var hh, mm int
	if parts := strings.SplitN(clock, ":", 3); len(parts) >= 2 {
		hh, _ = strconv.Atoi(parts[0])
		mm, _ = strconv.Atoi(parts[1])
	}
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

// ParseID parses a numeric identifier taken from a route or payload.
func ParseID(field, raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s", ErrValidation, field)
	}
	return uint(id), nil
}
