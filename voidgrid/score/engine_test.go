package score

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

func testEngine() *Engine {
	cfg := voidgrid.DefaultConfig().Engine
	return NewEngine(cfg.Score, cfg.Tiers)
}

func testAccount(score float64, lastUpdate time.Time) *models.Account {
	return &models.Account{
		Address:         "0xabc",
		CurrentScore:    score,
		LifetimeScore:   score,
		LastScoreUpdate: lastUpdate,
		CreatedAt:       lastUpdate,
	}
}

func TestApplyDecay(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		score float64
		days  int
		want  float64
	}{
		{name: "same day is a no-op", score: 1000, days: 0, want: 1000},
		{name: "one day", score: 1000, days: 1, want: 980},
		{name: "ten days", score: 1000, days: 10, want: 1000 * math.Pow(0.98, 10)},
		{name: "zero stays zero", score: 0, days: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine()
			acc := testAccount(tt.score, base)
			got := e.ApplyDecay(acc, base.Add(time.Duration(tt.days)*24*time.Hour))
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ApplyDecay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyDecayIdempotentWithinDay(t *testing.T) {
	e := testEngine()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	acc := testAccount(500, base)

	now := base.Add(3 * 24 * time.Hour)
	first := e.ApplyDecay(acc, now)
	second := e.ApplyDecay(acc, now.Add(time.Hour))
	if first != second {
		t.Errorf("repeated decay within the same day changed the score: %v then %v", first, second)
	}
}

func TestApplyDecayStepwiseMatchesSingleStep(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	e := testEngine()
	stepwise := testAccount(1234.5, base)
	e.ApplyDecay(stepwise, base.Add(7*24*time.Hour))
	e.ApplyDecay(stepwise, base.Add(19*24*time.Hour))
	e.ApplyDecay(stepwise, base.Add(30*24*time.Hour))

	single := testAccount(1234.5, base)
	e.ApplyDecay(single, base.Add(30*24*time.Hour))

	if math.Abs(stepwise.CurrentScore-single.CurrentScore) > 1e-6 {
		t.Errorf("stepwise decay %v differs from single-step decay %v",
			stepwise.CurrentScore, single.CurrentScore)
	}
}

func TestApplyDecayNeverNegative(t *testing.T) {
	e := testEngine()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	acc := testAccount(1000, base)

	now := base
	for _, days := range []int{1000, 500, 500} {
		now = now.Add(time.Duration(days) * 24 * time.Hour)
		got := e.ApplyDecay(acc, now)
		if got < 0 {
			t.Fatalf("score went negative after %d days: %v", days, got)
		}
	}
	if acc.CurrentScore <= 0 || acc.CurrentScore > 1e-6 {
		t.Errorf("score after 2000 days = %v, want a tiny positive value converging on 0", acc.CurrentScore)
	}
}

// The half-life of pure decay is a derived property of the rate, not a
// stored constant: ln(0.5)/ln(0.98) ~= 34.31 days.
func TestDecayHalfLife(t *testing.T) {
	halfLife := math.Log(0.5) / math.Log(0.98)
	if math.Abs(halfLife-34.31) > 0.01 {
		t.Fatalf("derived half-life = %v, want ~34.31 days", halfLife)
	}

	e := testEngine()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	acc := testAccount(1000, base)

	days := int(math.Ceil(halfLife))
	e.ApplyDecay(acc, base.Add(time.Duration(days)*24*time.Hour))
	if acc.CurrentScore >= 500 {
		t.Errorf("score after %d days = %v, want below half", days, acc.CurrentScore)
	}

	acc2 := testAccount(1000, base)
	e.ApplyDecay(acc2, base.Add(time.Duration(days-1)*24*time.Hour))
	if acc2.CurrentScore < 500 {
		t.Errorf("score after %d days = %v, want at or above half", days-1, acc2.CurrentScore)
	}
}

func TestAddPoints(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("adds to both scores", func(t *testing.T) {
		e := testEngine()
		acc := testAccount(100, base)
		if err := e.AddPoints(acc, 50, base); err != nil {
			t.Fatalf("AddPoints() error = %v", err)
		}
		if acc.CurrentScore != 150 || acc.LifetimeScore != 150 {
			t.Errorf("scores = %v/%v, want 150/150", acc.CurrentScore, acc.LifetimeScore)
		}
	})

	t.Run("decays before adding", func(t *testing.T) {
		e := testEngine()
		acc := testAccount(1000, base)
		if err := e.AddPoints(acc, 100, base.Add(24*time.Hour)); err != nil {
			t.Fatalf("AddPoints() error = %v", err)
		}
		want := 1000*0.98 + 100
		if math.Abs(acc.CurrentScore-want) > 1e-6 {
			t.Errorf("CurrentScore = %v, want %v", acc.CurrentScore, want)
		}
		// Lifetime never decays; only the delta lands on it.
		if acc.LifetimeScore != 1100 {
			t.Errorf("LifetimeScore = %v, want 1100", acc.LifetimeScore)
		}
	})

	t.Run("rejects negative and non-finite amounts", func(t *testing.T) {
		e := testEngine()
		for _, amount := range []float64{-1, math.NaN(), math.Inf(1)} {
			acc := testAccount(100, base)
			err := e.AddPoints(acc, amount, base)
			if !errors.Is(err, voidgrid.ErrInvalidAmount) {
				t.Errorf("AddPoints(%v) error = %v, want ErrInvalidAmount", amount, err)
			}
			if acc.CurrentScore != 100 {
				t.Errorf("AddPoints(%v) mutated score to %v", amount, acc.CurrentScore)
			}
		}
	})
}

func TestTierThresholds(t *testing.T) {
	e := testEngine()

	tests := []struct {
		score float64
		want  Tier
	}{
		{0, TierBronze},
		{100, TierBronze},
		{249.99, TierBronze},
		{250, TierSilver},
		{599.99, TierSilver},
		{600, TierGold},
		{1499.99, TierGold},
		{1500, TierSTier},
		{100000, TierSTier},
	}

	prev := TierBronze
	for _, tt := range tests {
		got := e.Tier(tt.score)
		if got != tt.want {
			t.Errorf("Tier(%v) = %v, want %v", tt.score, got, tt.want)
		}
		// Monotonic in score: the table is iterated in ascending order.
		if got < prev {
			t.Errorf("Tier(%v) = %v decreased below %v", tt.score, got, prev)
		}
		prev = got
	}
}

func TestDisplayScore(t *testing.T) {
	if got := DisplayScore(249.97); got != 249 {
		t.Errorf("DisplayScore(249.97) = %v, want 249", got)
	}
	if got := DisplayScore(-0.3); got != 0 {
		t.Errorf("DisplayScore(-0.3) = %v, want 0", got)
	}
}
