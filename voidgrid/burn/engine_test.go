package burn

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/multiplier"
	"github.com/voidlabs/voidgrid/voidgrid/utils"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func testEngine(stack multiplier.Stack) *Engine {
	cfg := voidgrid.DefaultConfig().Engine
	return NewEngine(cfg.Burn, cfg.Score.XPPerLevel, stack)
}

func testSeason() *models.Season {
	return &models.Season{
		ID:                1,
		StartTime:         now.Add(-30 * 24 * time.Hour),
		EndTime:           now.Add(60 * 24 * time.Hour),
		DailyCreditCap:    6000,
		SeasonalCreditCap: 250000,
		Active:            true,
		Status:            models.SeasonStatusActive,
	}
}

func testState(dailyUsed, seasonalUsed float64) *models.SeasonState {
	return &models.SeasonState{
		Address:             "0xabc",
		SeasonID:            1,
		DailyCreditsUsed:    dailyUsed,
		DailyResetDay:       utils.DayKey(now),
		SeasonalCreditsUsed: seasonalUsed,
	}
}

func TestZoneSchedule(t *testing.T) {
	tests := []struct {
		name      string
		dailyUsed float64
		amount    float64
		wantRaw   float64
	}{
		{name: "all zone one", dailyUsed: 0, amount: 3000, wantRaw: 3000},
		{name: "all zone two", dailyUsed: 3000, amount: 3000, wantRaw: 1500},
		{name: "spans both zones", dailyUsed: 0, amount: 6000, wantRaw: 4500},
		{name: "past the cap earns nothing", dailyUsed: 6000, amount: 5000, wantRaw: 0},
		{name: "straddles zone boundary", dailyUsed: 2000, amount: 2000, wantRaw: 1000 + 500},
		{name: "spills into dead zone", dailyUsed: 5000, amount: 3000, wantRaw: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(multiplier.NeutralStack())
			state := testState(tt.dailyUsed, tt.dailyUsed)
			res, err := e.Compute(context.Background(), state, &models.LifetimeState{}, testSeason(), tt.amount, now)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if math.Abs(res.RawXP-tt.wantRaw) > 1e-9 {
				t.Errorf("RawXP = %v, want %v", res.RawXP, tt.wantRaw)
			}
		})
	}
}

func TestComputePersistsEligibleNotBurned(t *testing.T) {
	e := testEngine(multiplier.NeutralStack())
	season := testSeason()
	season.SeasonalCreditCap = 1000
	state := testState(0, 800)
	lifetime := &models.LifetimeState{Address: "0xabc"}

	// 500 burned but only 200 under the seasonal cap counts.
	res, err := e.Compute(context.Background(), state, lifetime, season, 500, now)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if res.EligibleAmount != 200 {
		t.Errorf("EligibleAmount = %v, want 200", res.EligibleAmount)
	}
	if state.DailyCreditsUsed != 200 {
		t.Errorf("DailyCreditsUsed = %v, want 200 (eligible, not burned)", state.DailyCreditsUsed)
	}
	if state.SeasonalCreditsUsed != 1000 {
		t.Errorf("SeasonalCreditsUsed = %v, want 1000", state.SeasonalCreditsUsed)
	}
	if res.SeasonalRemaining != 0 {
		t.Errorf("SeasonalRemaining = %v, want 0", res.SeasonalRemaining)
	}
}

func TestSeasonalCapExhaustedStillSucceeds(t *testing.T) {
	e := testEngine(multiplier.NeutralStack())
	season := testSeason()
	season.SeasonalCreditCap = 1000
	state := testState(0, 1000)
	lifetime := &models.LifetimeState{Address: "0xabc"}

	for i := 0; i < 3; i++ {
		res, err := e.Compute(context.Background(), state, lifetime, season, 400, now)
		if err != nil {
			t.Fatalf("Compute() #%d error = %v, want success with zero XP", i, err)
		}
		if res.XPAwarded != 0 {
			t.Errorf("XPAwarded = %v, want 0", res.XPAwarded)
		}
	}
	if state.SeasonalCreditsUsed != 1000 {
		t.Errorf("SeasonalCreditsUsed = %v, want unchanged 1000", state.SeasonalCreditsUsed)
	}
}

func TestDailyLazyReset(t *testing.T) {
	e := testEngine(multiplier.NeutralStack())
	state := testState(6000, 6000)
	state.DailyResetDay = utils.DayKey(now.Add(-24 * time.Hour))
	lifetime := &models.LifetimeState{Address: "0xabc"}

	// Yesterday's exhausted counter resets before computing.
	res, err := e.Compute(context.Background(), state, lifetime, testSeason(), 1000, now)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if res.RawXP != 1000 {
		t.Errorf("RawXP = %v, want 1000 after daily reset", res.RawXP)
	}
	if state.DailyResetDay != utils.DayKey(now) {
		t.Errorf("DailyResetDay = %v, want %v", state.DailyResetDay, utils.DayKey(now))
	}
	if state.DailyCreditsUsed != 1000 {
		t.Errorf("DailyCreditsUsed = %v, want 1000", state.DailyCreditsUsed)
	}
}

func TestMultiplierStack(t *testing.T) {
	tests := []struct {
		name   string
		stack  multiplier.Stack
		amount float64
		want   int64
	}{
		{
			name:   "prestige and creator stack multiplicatively",
			stack:  multiplier.Stack{Prestige: multiplier.Static(2.0), CreatorTier: multiplier.Static(1.5)},
			amount: 1000,
			want:   3000,
		},
		{
			name:   "order is irrelevant",
			stack:  multiplier.Stack{Prestige: multiplier.Static(1.5), CreatorTier: multiplier.Static(2.0)},
			amount: 1000,
			want:   3000,
		},
		{
			name:   "mini app clamped to its cap",
			stack:  multiplier.Stack{MiniApp: multiplier.Static(4.0)},
			amount: 1000,
			want:   1500,
		},
		{
			name:   "full stack",
			stack:  multiplier.Stack{Prestige: multiplier.Static(2.0), CreatorTier: multiplier.Static(1.5), District: multiplier.Static(1.1), MiniApp: multiplier.Static(1.2)},
			amount: 1000,
			want:   int64(math.Round(1000 * 2.0 * 1.5 * 1.1 * 1.2)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(tt.stack)
			state := testState(0, 0)
			res, err := e.Compute(context.Background(), state, &models.LifetimeState{}, testSeason(), tt.amount, now)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if res.XPAwarded != tt.want {
				t.Errorf("XPAwarded = %v, want %v", res.XPAwarded, tt.want)
			}
		})
	}
}

func TestComputeErrors(t *testing.T) {
	e := testEngine(multiplier.NeutralStack())
	lifetime := &models.LifetimeState{Address: "0xabc"}

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
			state := testState(0, 0)
			_, err := e.Compute(context.Background(), state, lifetime, testSeason(), amount, now)
			if !errors.Is(err, voidgrid.ErrInvalidAmount) {
				t.Errorf("Compute(%v) error = %v, want ErrInvalidAmount", amount, err)
			}
			if state.SeasonalCreditsUsed != 0 {
				t.Errorf("Compute(%v) mutated state", amount)
			}
		}
	})

	t.Run("ended season rejected", func(t *testing.T) {
		season := testSeason()
		season.Active = false
		season.Status = models.SeasonStatusEnded
		_, err := e.Compute(context.Background(), testState(0, 0), lifetime, season, 100, now)
		if !errors.Is(err, voidgrid.ErrSeasonEnded) {
			t.Errorf("Compute() error = %v, want ErrSeasonEnded", err)
		}
	})

	t.Run("expired but still flagged active rejected", func(t *testing.T) {
		season := testSeason()
		season.EndTime = now.Add(-time.Hour)
		_, err := e.Compute(context.Background(), testState(0, 0), lifetime, season, 100, now)
		if !errors.Is(err, voidgrid.ErrSeasonEnded) {
			t.Errorf("Compute() error = %v, want ErrSeasonEnded", err)
		}
	})
}

func TestLifetimeProgression(t *testing.T) {
	e := testEngine(multiplier.NeutralStack())
	state := testState(0, 0)
	lifetime := &models.LifetimeState{Address: "0xabc", TotalXPEarned: 900}

	res, err := e.Compute(context.Background(), state, lifetime, testSeason(), 2500, now)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if res.XPAwarded != 2500 {
		t.Fatalf("XPAwarded = %v, want 2500", res.XPAwarded)
	}
	if lifetime.TotalXPEarned != 3400 {
		t.Errorf("TotalXPEarned = %v, want 3400", lifetime.TotalXPEarned)
	}
	if lifetime.CurrentLevel != 3 {
		t.Errorf("CurrentLevel = %v, want 3", lifetime.CurrentLevel)
	}
	if state.AirdropWeight != 2500 {
		t.Errorf("AirdropWeight = %v, want 2500", state.AirdropWeight)
	}
}

// The end-to-end scenario from the product sheet: fresh daily window, cap
// 6000, no multipliers, burn 4000 -> 3000*1.0 + 1000*0.5 = 3500 XP.
func TestFreshWindowScenario(t *testing.T) {
	e := testEngine(multiplier.NeutralStack())
	state := testState(0, 0)
	lifetime := &models.LifetimeState{Address: "0xabc"}

	res, err := e.Compute(context.Background(), state, lifetime, testSeason(), 4000, now)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if res.XPAwarded != 3500 {
		t.Errorf("XPAwarded = %v, want 3500", res.XPAwarded)
	}
	if state.DailyCreditsUsed != 4000 {
		t.Errorf("DailyCreditsUsed = %v, want 4000", state.DailyCreditsUsed)
	}
}
