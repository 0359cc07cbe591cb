package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/score"
	"github.com/voidlabs/voidgrid/voidgrid/utils"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func testLimiter() *Limiter {
	cfg := voidgrid.DefaultConfig().Engine
	return NewLimiter(cfg.RateLimit, score.NewEngine(cfg.Score, cfg.Tiers), nil)
}

func account(currentScore, holdings float64, ageDays int) *models.Account {
	created := now.Add(-time.Duration(ageDays) * 24 * time.Hour)
	return &models.Account{
		Address:         "0xabc",
		CurrentScore:    currentScore,
		VoidHoldings:    holdings,
		LastScoreUpdate: created,
		CreatedAt:       created,
	}
}

func window(sent int) *models.RateLimitWindow {
	return &models.RateLimitWindow{
		Address:      "0xabc",
		Channel:      models.ChannelGlobal,
		Day:          utils.DayKey(now),
		MessagesSent: sent,
	}
}

func TestCap(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		hold    float64
		ageDays int
		channel string
		want    int
	}{
		{name: "bronze global", score: 0, ageDays: 30, channel: models.ChannelGlobal, want: 50},
		{name: "bronze zone", score: 0, ageDays: 30, channel: models.ChannelZone, want: 40},
		{name: "bronze dm", score: 0, ageDays: 30, channel: models.ChannelDM, want: 20},
		{name: "silver boost", score: 300, ageDays: 30, channel: models.ChannelGlobal, want: 60},
		{name: "gold boost", score: 700, ageDays: 30, channel: models.ChannelGlobal, want: 75},
		{name: "s tier boost", score: 2000, ageDays: 30, channel: models.ChannelGlobal, want: 100},
		{name: "fresh wallet halved", score: 0, ageDays: 3, channel: models.ChannelGlobal, want: 25},
		{name: "fresh silver floors after all multipliers", score: 300, ageDays: 3, channel: models.ChannelGlobal, want: 30},
		{name: "max holdings boost doubles", score: 0, hold: 10000, ageDays: 30, channel: models.ChannelGlobal, want: 100},
		{name: "holdings below min ignored", score: 0, hold: 99, ageDays: 30, channel: models.ChannelGlobal, want: 50},
	}

	l := testLimiter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Cap(account(tt.score, tt.hold, tt.ageDays), tt.channel, now)
			if got != tt.want {
				t.Errorf("Cap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinearBoost(t *testing.T) {
	boost := LinearBoost(100, 10000, 2.0)

	tests := []struct {
		holdings float64
		want     float64
	}{
		{0, 1.0},
		{99.9, 1.0},
		{100, 1.0},
		{5050, 1.5},
		{10000, 2.0},
		{1e9, 2.0},
	}
	for _, tt := range tests {
		if got := boost(tt.holdings); got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("boost(%v) = %v, want %v", tt.holdings, got, tt.want)
		}
	}

	// Monotone across the interpolation range.
	prev := 0.0
	for h := 0.0; h <= 12000; h += 500 {
		got := boost(h)
		if got < prev {
			t.Fatalf("boost(%v) = %v decreased below %v", h, got, prev)
		}
		prev = got
	}
}

func TestRemainingAndRecord(t *testing.T) {
	l := testLimiter()
	acc := account(0, 0, 30)
	win := window(0)

	if got := l.Remaining(acc, win, models.ChannelGlobal, now); got != 50 {
		t.Fatalf("Remaining() = %v, want 50", got)
	}

	// Each successful Record drops remaining by exactly one.
	for i := 0; i < 50; i++ {
		before := l.Remaining(acc, win, models.ChannelGlobal, now)
		if err := l.Record(acc, win, models.ChannelGlobal, now); err != nil {
			t.Fatalf("Record() #%d error = %v", i, err)
		}
		after := l.Remaining(acc, win, models.ChannelGlobal, now)
		if after != before-1 {
			t.Fatalf("Record() #%d: remaining %v -> %v, want -1", i, before, after)
		}
	}

	// Exhausted: every further attempt fails and nothing is counted.
	for i := 0; i < 3; i++ {
		err := l.Record(acc, win, models.ChannelGlobal, now)
		if !errors.Is(err, voidgrid.ErrCapExceeded) {
			t.Fatalf("Record() past cap error = %v, want ErrCapExceeded", err)
		}
	}
	if win.MessagesSent != 50 {
		t.Errorf("MessagesSent = %v, want 50", win.MessagesSent)
	}
	if got := l.Remaining(acc, win, models.ChannelGlobal, now); got != 0 {
		t.Errorf("Remaining() after exhaustion = %v, want 0", got)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	l := testLimiter()
	acc := account(0, 0, 30)
	// A window carried over from a higher-cap tier can exceed today's cap.
	win := window(80)

	if got := l.Remaining(acc, win, models.ChannelGlobal, now); got != 0 {
		t.Errorf("Remaining() = %v, want 0", got)
	}
}
