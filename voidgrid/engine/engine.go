// Package engine composes the score, rate-limit, burn and season components
// into the two surfaces external callers use: event reporting and state
// queries. Events arrive already authenticated; nothing here verifies
// signatures or touches funds.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/burn"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/database/repositories"
	"github.com/voidlabs/voidgrid/voidgrid/ratelimit"
	"github.com/voidlabs/voidgrid/voidgrid/score"
	"github.com/voidlabs/voidgrid/voidgrid/season"
	"github.com/voidlabs/voidgrid/voidgrid/utils"
)

// WeightBoard mirrors the redis leaderboard; optional, nil means disabled.
type WeightBoard interface {
	AddWeight(ctx context.Context, seasonID int64, address string, weight float64) error
	Reset(ctx context.Context, seasonID int64) error
}

type Engine struct {
	cfg voidgrid.EngineConfig

	scores  *score.Engine
	limiter *ratelimit.Limiter
	burns   *burn.Engine
	seasons *season.Manager

	accounts  repositories.AccountRepository
	states    repositories.SeasonStateRepository
	lifetimes repositories.LifetimeStateRepository
	windows   repositories.RateLimitRepository

	board WeightBoard

	// Per-account mutexes: decay-then-add and cap-check-then-increment are
	// compare-and-update sequences that must not interleave for one
	// account. Accounts never share a lock, so there is no ordering issue.
	locks sync.Map
}

type Deps struct {
	Accounts  repositories.AccountRepository
	States    repositories.SeasonStateRepository
	Lifetimes repositories.LifetimeStateRepository
	Windows   repositories.RateLimitRepository
	Seasons   *season.Manager
	Scores    *score.Engine
	Limiter   *ratelimit.Limiter
	Burns     *burn.Engine
}

func New(cfg voidgrid.EngineConfig, deps Deps) *Engine {
	e := &Engine{
		cfg:       cfg,
		scores:    deps.Scores,
		limiter:   deps.Limiter,
		burns:     deps.Burns,
		seasons:   deps.Seasons,
		accounts:  deps.Accounts,
		states:    deps.States,
		lifetimes: deps.Lifetimes,
		windows:   deps.Windows,
	}

	e.seasons.OnRollover(func(ctx context.Context, ended *models.Season, next *models.Season) {
		if e.board == nil {
			return
		}
		if err := e.board.Reset(ctx, ended.ID); err != nil {
			slog.Warn("Failed to reset leaderboard for ended season",
				slog.String("type", "season"),
				slog.Int64("season_id", ended.ID),
				slog.Any("error", err))
		}
	})

	return e
}

// SetBoard attaches the optional airdrop-weight leaderboard.
func (e *Engine) SetBoard(board WeightBoard) {
	e.board = board
}

func (e *Engine) lock(address string) func() {
	v, _ := e.locks.LoadOrStore(address, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// MessageResult reports the rate-limit outcome for one message. A denied
// message is a normal outcome, not an error.
type MessageResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	XPAwarded float64
}

// ReportMessage counts a message against the channel's daily window and, if
// allowed, credits the fixed per-channel XP to the account's score.
func (e *Engine) ReportMessage(ctx context.Context, address, channel string, now time.Time) (*MessageResult, error) {
	defer e.lock(address)()

	account, err := e.accounts.GetOrCreate(ctx, address, now)
	if err != nil {
		return nil, err
	}
	window, err := e.windows.GetOrCreate(ctx, address, channel, utils.DayKey(now))
	if err != nil {
		return nil, err
	}

	e.scores.ApplyDecay(account, now)

	if err := e.limiter.Record(account, window, channel, now); err != nil {
		if errors.Is(err, voidgrid.ErrCapExceeded) {
			return &MessageResult{
				Allowed:   false,
				Remaining: 0,
				ResetAt:   utils.NextUTCMidnight(now),
			}, nil
		}
		return nil, err
	}
	xp := e.messageXP(channel)
	if err := e.scores.AddPoints(account, xp, now); err != nil {
		return nil, err
	}
	if err := e.windows.ApplyMessage(ctx, window, account); err != nil {
		return nil, err
	}

	return &MessageResult{
		Allowed:   true,
		Remaining: e.limiter.Remaining(account, window, channel, now),
		ResetAt:   utils.NextUTCMidnight(now),
		XPAwarded: xp,
	}, nil
}

func (e *Engine) messageXP(channel string) float64 {
	switch channel {
	case models.ChannelZone:
		return e.cfg.Messages.ZoneXP
	case models.ChannelDM:
		return e.cfg.Messages.DMXP
	default:
		return e.cfg.Messages.GlobalXP
	}
}

// BurnResult reports the XP outcome of one burn along with the remaining
// reward-eligible VOID and the deterministic reset points.
type BurnResult struct {
	XPAwarded         int64
	DailyRemaining    int64
	SeasonalRemaining int64
	DailyResetAt      time.Time
	SeasonEndsAt      time.Time
}

// ReportBurn converts a confirmed on-chain burn into XP. The burn already
// happened; exhausted caps zero the reward but never fail the call.
func (e *Engine) ReportBurn(ctx context.Context, address string, seasonID int64, amount float64, now time.Time) (*BurnResult, error) {
	defer e.lock(address)()

	if _, err := e.accounts.GetOrCreate(ctx, address, now); err != nil {
		return nil, err
	}

	seasonRow, err := e.seasons.Resolve(ctx, seasonID, now)
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown season id; storage failures pass through untranslated.
		return nil, voidgrid.ErrSeasonEnded
	}
	if err != nil {
		return nil, err
	}

	state, err := e.states.GetOrCreate(ctx, address, seasonID, utils.DayKey(now))
	if err != nil {
		return nil, err
	}
	lifetime, err := e.lifetimes.GetOrCreate(ctx, address)
	if err != nil {
		return nil, err
	}

	result, err := e.burns.Compute(ctx, state, lifetime, seasonRow, amount, now)
	if err != nil {
		return nil, err
	}

	if err := e.states.ApplyBurn(ctx, state, lifetime); err != nil {
		return nil, err
	}

	if e.board != nil && result.XPAwarded > 0 {
		if err := e.board.AddWeight(ctx, seasonID, address, float64(result.XPAwarded)); err != nil {
			slog.Warn("Failed to update airdrop leaderboard",
				slog.String("type", "burn"),
				slog.String("address", address),
				slog.Any("error", err))
		}
	}

	slog.Debug("Burn processed",
		slog.String("type", "burn"),
		slog.String("address", address),
		slog.Int64("season_id", seasonID),
		slog.Float64("amount", amount),
		slog.Int64("xp", result.XPAwarded))

	return &BurnResult{
		XPAwarded:         result.XPAwarded,
		DailyRemaining:    int64(math.Floor(result.DailyRemaining)),
		SeasonalRemaining: int64(math.Floor(result.SeasonalRemaining)),
		DailyResetAt:      result.DailyResetAt,
		SeasonEndsAt:      result.SeasonEndsAt,
	}, nil
}

// AccountSnapshot is the read model the HUD renders. Scores are floored to
// integers here, at the presentation boundary.
type AccountSnapshot struct {
	Address             string
	CurrentScore        int64
	LifetimeScore       int64
	Tier                string
	PerChannelRemaining map[string]int
	SeasonID            int64
	SeasonXP            int64
	AirdropWeight       float64
	LifetimeXP          int64
	LifetimeLevel       int
	DailyResetAt        time.Time
	SeasonEndsAt        time.Time
}

// GetAccountSnapshot reads the account's full progression state. Decay and
// lazy resets run as a side effect of the read; both are pure functions of
// time, so persisting them from a read path is safe and expected.
func (e *Engine) GetAccountSnapshot(ctx context.Context, address string, now time.Time) (*AccountSnapshot, error) {
	defer e.lock(address)()

	account, err := e.accounts.GetOrCreate(ctx, address, now)
	if err != nil {
		return nil, err
	}
	if before := account.CurrentScore; e.scores.ApplyDecay(account, now) != before {
		if err := e.accounts.Update(ctx, account); err != nil {
			return nil, err
		}
	}

	current, err := e.seasons.Current(ctx, now)
	if err != nil {
		return nil, err
	}
	state, err := e.states.GetOrCreate(ctx, address, current.ID, utils.DayKey(now))
	if err != nil {
		return nil, err
	}
	lifetime, err := e.lifetimes.GetOrCreate(ctx, address)
	if err != nil {
		return nil, err
	}

	remaining := make(map[string]int, 3)
	for _, channel := range []string{models.ChannelGlobal, models.ChannelZone, models.ChannelDM} {
		window, err := e.windows.GetOrCreate(ctx, address, channel, utils.DayKey(now))
		if err != nil {
			return nil, err
		}
		remaining[channel] = e.limiter.Remaining(account, window, channel, now)
	}

	return &AccountSnapshot{
		Address:             address,
		CurrentScore:        score.DisplayScore(account.CurrentScore),
		LifetimeScore:       score.DisplayScore(account.LifetimeScore),
		Tier:                e.scores.Tier(account.CurrentScore).String(),
		PerChannelRemaining: remaining,
		SeasonID:            current.ID,
		SeasonXP:            state.XPEarned,
		AirdropWeight:       state.AirdropWeight,
		LifetimeXP:          lifetime.TotalXPEarned,
		LifetimeLevel:       lifetime.CurrentLevel,
		DailyResetAt:        utils.NextUTCMidnight(now),
		SeasonEndsAt:        current.EndTime,
	}, nil
}

// GetCurrentSeason returns the active season, rolling over lazily if its end
// time has passed.
func (e *Engine) GetCurrentSeason(ctx context.Context, now time.Time) (*models.Season, error) {
	return e.seasons.Current(ctx, now)
}

// UpdateHoldings records the wallet subsystem's report of an address's VOID
// holdings, the input to the rate-limit holdings boost.
func (e *Engine) UpdateHoldings(ctx context.Context, address string, holdings float64, now time.Time) error {
	if holdings < 0 || math.IsNaN(holdings) || math.IsInf(holdings, 0) {
		return voidgrid.ErrInvalidAmount
	}

	defer e.lock(address)()

	if _, err := e.accounts.GetOrCreate(ctx, address, now); err != nil {
		return err
	}
	return e.accounts.UpdateHoldings(ctx, address, holdings)
}

// PruneRateWindows garbage-collects rate-limit rows from fully elapsed days.
func (e *Engine) PruneRateWindows(ctx context.Context, now time.Time) (int64, error) {
	return e.windows.PruneBefore(ctx, utils.DayKey(now))
}
