package utils

import "time"

const dayLayout = "2006-01-02"

// DayKey returns the UTC calendar day t falls on, e.g. "2025-08-31". Daily
// counters are keyed by this value and reset lazily when the stored key no
// longer matches.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// NextUTCMidnight returns the deterministic reset time for daily counters.
func NextUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// WholeDays returns the number of complete days elapsed from from to to,
// never negative.
func WholeDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}
