package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Offset is a signed UTC offset in hours and minutes, parsed from the
// "+HH:MM"/"-HH:MM" wire form the booking frontend exchanges with the API.
type Offset struct {
	Negative bool
	Hours    int
	Minutes  int
}

// ParseOffset reads a signed "+HH:MM"/"-HH:MM" offset. Longer zone labels
// (e.g. "GMT+05:30") are accepted; only the trailing six characters count,
// matching how the rest of the system formats zone strings.
func ParseOffset(s string) (Offset, error) {
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return Offset{}, fmt.Errorf("invalid timezone offset %q", s)
	}

	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return Offset{}, fmt.Errorf("invalid timezone offset %q", s)
	}
	minutes, err := strconv.Atoi(s[4:6])
	if err != nil {
		return Offset{}, fmt.Errorf("invalid timezone offset %q", s)
	}
	if hours > 14 || minutes > 59 {
		return Offset{}, fmt.Errorf("timezone offset %q out of range", s)
	}

	return Offset{Negative: s[0] == '-', Hours: hours, Minutes: minutes}, nil
}

// Duration returns the signed shift the offset represents.
func (o Offset) Duration() time.Duration {
	d := time.Duration(o.Hours)*time.Hour + time.Duration(o.Minutes)*time.Minute
	if o.Negative {
		return -d
	}
	return d
}

// Apply shifts a reference-zone instant to the local wall clock.
func (o Offset) Apply(t time.Time) time.Time {
	return t.Add(o.Duration())
}

// Invert shifts a local wall-clock value back to the reference zone.
func (o Offset) Invert(t time.Time) time.Time {
	return t.Add(-o.Duration())
}

// String renders the canonical "+HH:MM"/"-HH:MM" form.
func (o Offset) String() string {
	sign := "+"
	if o.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%02d:%02d", sign, o.Hours, o.Minutes)
}

// WeekdayKey is the lowercase English weekday name used as working-plan
// JSON key ("monday" .. "sunday").
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// ParseClock reads an "HH:MM" wall-clock value into minutes after midnight.
func ParseClock(s string) (int, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AtClock combines a calendar date with an "HH:MM" wall-clock value in the
// date's location.
func AtClock(date time.Time, clock string) (time.Time, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// StartOfDay truncates a time to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
