package utils

import (
	"fmt"
	"time"
)

// DateLayout is the ISO date layout used in all record store date fields.
const DateLayout = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// ParseISODateIn parses a YYYY-MM-DD string as midnight in loc. Day
// arithmetic against a wall clock must stay in one location, or the day
// boundary drifts by the zone offset.
func ParseISODateIn(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// ParseFutureDate parses a YYYY-MM-DD string and requires it to be strictly
// after today (in now's location).
func ParseFutureDate(s string, now time.Time) (time.Time, error) {
	t, err := ParseISODate(s)
	if err != nil {
		return time.Time{}, err
	}
	// ISO dates order lexically, which sidesteps the parsed date being in
	// UTC while now is local.
	if t.Format(DateLayout) <= now.Format(DateLayout) {
		return time.Time{}, fmt.Errorf("date %s is not in the future", s)
	}
	return t, nil
}

// Midnight truncates t to the start of its day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextWeekday returns the next occurrence of the given weekday strictly after
// today. When today already is that weekday, the result lands a week ahead.
func NextWeekday(now time.Time, weekday time.Weekday) time.Time {
	t := Midnight(now)
	days := int(weekday-t.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days)
}
