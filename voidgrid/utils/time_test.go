package utils

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc midday", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), "2025-06-15"},
		{"utc midnight", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), "2025-06-15"},
		{"east of utc before midnight", time.Date(2025, 6, 16, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600)), "2025-06-15"},
		{"west of utc after midnight", time.Date(2025, 6, 15, 20, 0, 0, 0, time.FixedZone("PDT", -7*3600)), "2025-06-16"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayKey(tt.in); got != tt.want {
				t.Errorf("DayKey(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextUTCMidnight(t *testing.T) {
	in := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	want := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if got := NextUTCMidnight(in); !got.Equal(want) {
		t.Errorf("NextUTCMidnight(%v) = %v, want %v", in, got, want)
	}

	// Exactly at midnight the reset is the following midnight, so a counter
	// keyed to the new day gets a full day.
	in = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	want = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if got := NextUTCMidnight(in); !got.Equal(want) {
		t.Errorf("NextUTCMidnight(midnight) = %v, want %v", got, want)
	}
}

func TestWholeDays(t *testing.T) {
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", base, 0},
		{"under a day", base.Add(23 * time.Hour), 0},
		{"exactly one day", base.Add(24 * time.Hour), 1},
		{"one and a half days", base.Add(36 * time.Hour), 1},
		{"ten days", base.Add(240 * time.Hour), 10},
		{"backwards", base.Add(-48 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WholeDays(base, tt.to); got != tt.want {
				t.Errorf("WholeDays() = %d, want %d", got, tt.want)
			}
		})
	}
}
