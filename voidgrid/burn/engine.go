// Package burn converts reported VOID burn events into XP through a capped,
// zone-based marginal schedule. Caps gate rewards, never utility: a burn past
// every cap still succeeds, it just earns zero XP.
package burn

import (
	"context"
	"math"
	"time"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/multiplier"
	"github.com/voidlabs/voidgrid/voidgrid/utils"
)

type Engine struct {
	cfg        voidgrid.BurnConfig
	xpPerLevel int64
	stack      multiplier.Stack
}

func NewEngine(cfg voidgrid.BurnConfig, xpPerLevel int64, stack multiplier.Stack) *Engine {
	return &Engine{cfg: cfg, xpPerLevel: xpPerLevel, stack: stack}
}

// Result reports one burn's reward outcome plus the deterministic reset
// points callers surface to users.
type Result struct {
	XPAwarded         int64
	RawXP             float64
	EligibleAmount    float64
	DailyRemaining    float64
	SeasonalRemaining float64
	DailyResetAt      time.Time
	SeasonEndsAt      time.Time
}

// Compute runs the full reward pipeline for one burn and mutates state and
// lifetime in place. Persistence is the caller's job; the structs carry the
// exact values to store.
//
// Pipeline: lazy daily reset, seasonal cap clamp, marginal zone schedule,
// multiplicative modifier stack, rounded to the awarded XP.
func (e *Engine) Compute(ctx context.Context, state *models.SeasonState, lifetime *models.LifetimeState, season *models.Season, amount float64, now time.Time) (*Result, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, voidgrid.ErrInvalidAmount
	}
	if !season.Active || season.Expired(now) {
		return nil, voidgrid.ErrSeasonEnded
	}

	today := utils.DayKey(now)
	if state.DailyResetDay != today {
		state.DailyCreditsUsed = 0
		state.DailyResetDay = today
	}

	// Credits beyond the seasonal cap earn nothing; the burn itself was
	// already authorized elsewhere and is not our concern.
	seasonalEligible := season.SeasonalCreditCap - state.SeasonalCreditsUsed
	if seasonalEligible < 0 {
		seasonalEligible = 0
	}
	eligible := math.Min(amount, seasonalEligible)

	rawXP := e.zoneXP(season.DailyCreditCap, state.DailyCreditsUsed, eligible)

	values := e.stack.Resolve(ctx, state.Address)
	miniApp := math.Min(values.MiniApp, e.cfg.MiniAppCap)
	finalXP := int64(math.Round(rawXP * values.Prestige * values.CreatorTier * values.District * miniApp))

	state.DailyCreditsUsed += eligible
	state.SeasonalCreditsUsed += eligible
	state.XPEarned += finalXP
	state.AirdropWeight += float64(finalXP)

	lifetime.TotalXPEarned += finalXP
	lifetime.RecomputeLevel(e.xpPerLevel)

	return &Result{
		XPAwarded:         finalXP,
		RawXP:             rawXP,
		EligibleAmount:    eligible,
		DailyRemaining:    math.Max(0, season.DailyCreditCap-state.DailyCreditsUsed),
		SeasonalRemaining: math.Max(0, season.SeasonalCreditCap-state.SeasonalCreditsUsed),
		DailyResetAt:      utils.NextUTCMidnight(now),
		SeasonEndsAt:      season.EndTime,
	}, nil
}

// zoneXP walks the eligible amount through the marginal schedule starting at
// the already-used daily credits. A burn straddling a zone boundary is split
// so each portion earns its own zone's rate.
//
// Zone 1: [0, D/2) at the full rate. Zone 2: [D/2, D) at the half rate.
// Zone 3: [D, inf) earns nothing.
func (e *Engine) zoneXP(dailyCap, used, amount float64) float64 {
	boundary := dailyCap * e.cfg.HalfRateZoneStart

	xp := 0.0
	if used < boundary {
		portion := math.Min(amount, boundary-used)
		xp += portion * e.cfg.Zone1Rate
		used += portion
		amount -= portion
	}
	if amount > 0 && used < dailyCap {
		portion := math.Min(amount, dailyCap-used)
		xp += portion * e.cfg.Zone2Rate
	}
	return xp
}
