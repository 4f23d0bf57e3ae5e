// Package dateutil handles calendar dates stored as UTC midnights.
package dateutil

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Date truncates t to its calendar day in t's own location and returns that
// day as a UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD string.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today is the current calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(now.In(loc))
}

// FirstOfMonth returns the first day of the given month.
func FirstOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b inclusive.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours()/24) + 1
}
