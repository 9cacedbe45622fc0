package util

import "time"

// DayLayout is the calendar-day format used in cache payloads and
// provider APIs.
const DayLayout = "2006-01-02"

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// FormatDay formats t as YYYY-MM-DD in UTC.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// WholeDays returns the number of complete days elapsed from earlier
// to later (floor, negative-free for ordered inputs).
func WholeDays(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
