package util

import "time"

// DayKey formats a UTC calendar-day bucket key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WindowStart returns the start of a trailing window ending at now.
func WindowStart(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}
