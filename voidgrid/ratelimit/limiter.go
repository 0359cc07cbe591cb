// Package ratelimit computes per-channel daily message allowances from tier,
// account age and VOID holdings. Caps gate messages only; nothing here
// touches scores or XP.
package ratelimit

import (
	"math"
	"time"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/score"
)

// BoostFunc maps VOID holdings to a cap multiplier. The interpolation curve
// is deployment configuration, not a fixed formula; swap it at construction.
type BoostFunc func(holdings float64) float64

// LinearBoost is the default curve: neutral below minHolding, rising
// linearly to maxBoost at maxHolding and capped there.
func LinearBoost(minHolding, maxHolding, maxBoost float64) BoostFunc {
	return func(holdings float64) float64 {
		if holdings < minHolding || maxHolding <= minHolding {
			return 1.0
		}
		if holdings >= maxHolding {
			return maxBoost
		}
		frac := (holdings - minHolding) / (maxHolding - minHolding)
		return 1.0 + frac*(maxBoost-1.0)
	}
}

type Limiter struct {
	cfg    voidgrid.RateLimitConfig
	scores *score.Engine
	boost  BoostFunc
}

func NewLimiter(cfg voidgrid.RateLimitConfig, scores *score.Engine, boost BoostFunc) *Limiter {
	if boost == nil {
		boost = LinearBoost(cfg.MinHolding, cfg.HoldingsForMaxBoost, cfg.MaxHoldingsBoost)
	}
	return &Limiter{cfg: cfg, scores: scores, boost: boost}
}

func (l *Limiter) baseCap(channel string) int {
	switch channel {
	case models.ChannelZone:
		return l.cfg.ZoneCap
	case models.ChannelDM:
		return l.cfg.DMCap
	default:
		return l.cfg.GlobalCap
	}
}

func (l *Limiter) tierBoost(t score.Tier) float64 {
	switch t {
	case score.TierSilver:
		return l.cfg.SilverBoost
	case score.TierGold:
		return l.cfg.GoldBoost
	case score.TierSTier:
		return l.cfg.STierBoost
	default:
		return l.cfg.BronzeBoost
	}
}

// Cap returns the effective integer cap for the account on the channel:
// base cap boosted by tier, halved for fresh wallets, boosted again by
// holdings, floored to an integer at the end.
func (l *Limiter) Cap(account *models.Account, channel string, now time.Time) int {
	limit := float64(l.baseCap(channel))
	limit *= l.tierBoost(l.scores.Tier(account.CurrentScore))

	freshWindow := time.Duration(l.cfg.FreshAccountDays) * 24 * time.Hour
	if account.Age(now) < freshWindow {
		limit *= l.cfg.FreshAccountPenalty
	}

	limit *= l.boost(account.VoidHoldings)

	return int(math.Floor(limit))
}

// Remaining returns how many messages the account may still send on the
// channel today. Never negative, never above the effective cap.
func (l *Limiter) Remaining(account *models.Account, window *models.RateLimitWindow, channel string, now time.Time) int {
	remaining := l.Cap(account, channel, now) - window.MessagesSent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Record counts one message against the window, or reports ErrCapExceeded
// without mutating anything. Score and XP effects are the caller's business
// after a successful Record.
func (l *Limiter) Record(account *models.Account, window *models.RateLimitWindow, channel string, now time.Time) error {
	if l.Remaining(account, window, channel, now) <= 0 {
		return voidgrid.ErrCapExceeded
	}
	window.MessagesSent++
	return nil
}
