// Package score applies lazy exponential decay to account reputation and
// derives access tiers from the decayed value. Decay is recomputed from the
// stored last-update timestamp on every touch; there is no background job.
package score

import (
	"math"
	"time"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/utils"
)

// Tier is the discrete reputation bracket derived from the current score.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierSTier
)

func (t Tier) String() string {
	switch t {
	case TierSilver:
		return "SILVER"
	case TierGold:
		return "GOLD"
	case TierSTier:
		return "S_TIER"
	default:
		return "BRONZE"
	}
}

type Engine struct {
	cfg   voidgrid.ScoreConfig
	tiers voidgrid.TierConfig
}

func NewEngine(cfg voidgrid.ScoreConfig, tiers voidgrid.TierConfig) *Engine {
	return &Engine{cfg: cfg, tiers: tiers}
}

// ApplyDecay advances the account's score to now, multiplying by the decay
// rate once per whole elapsed day. Calling it again within the same day is a
// no-op, so reads may trigger it freely. The score floats toward zero but
// never below it.
func (e *Engine) ApplyDecay(account *models.Account, now time.Time) float64 {
	days := utils.WholeDays(account.LastScoreUpdate, now)
	if days == 0 {
		return account.CurrentScore
	}

	account.CurrentScore *= math.Pow(e.cfg.DecayRatePerDay, float64(days))
	if account.CurrentScore < 0 || math.IsNaN(account.CurrentScore) {
		account.CurrentScore = 0
	}
	// Advance by the consumed whole days only, so the fractional remainder
	// keeps accruing toward the next decay step.
	account.LastScoreUpdate = account.LastScoreUpdate.Add(time.Duration(days) * 24 * time.Hour)

	return account.CurrentScore
}

// AddPoints decays first, then credits amount to both the current and the
// lifetime score. Decay is the only mechanism that lowers the current score;
// negative or non-finite deltas are rejected before any mutation.
func (e *Engine) AddPoints(account *models.Account, amount float64, now time.Time) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return voidgrid.ErrInvalidAmount
	}

	e.ApplyDecay(account, now)
	account.CurrentScore += amount
	account.LifetimeScore += amount
	return nil
}

// Tier is a pure threshold lookup over the ordered table; increasing score
// never decreases the tier.
func (e *Engine) Tier(currentScore float64) Tier {
	switch {
	case currentScore >= e.tiers.STier:
		return TierSTier
	case currentScore >= e.tiers.Gold:
		return TierGold
	case currentScore >= e.tiers.Silver:
		return TierSilver
	default:
		return TierBronze
	}
}

// DisplayScore floors the stored float to an integer at the presentation
// boundary. Internal storage keeps full precision.
func DisplayScore(score float64) int64 {
	if score < 0 {
		return 0
	}
	return int64(math.Floor(score))
}
