// Package season owns the season lifecycle. Transitions are lazy: the first
// access after the active season's end time performs the rollover; there is
// no timer and no scheduler.
package season

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/database/repositories"
)

// RolloverHook runs after a season transition commits. Hook failures are
// logged, not propagated: the new season is already live.
type RolloverHook func(ctx context.Context, ended *models.Season, next *models.Season)

type Manager struct {
	repo  repositories.SeasonRepository
	cfg   voidgrid.SeasonConfig
	group singleflight.Group
	hooks []RolloverHook

	mu     sync.RWMutex
	cached *models.Season
}

func NewManager(repo repositories.SeasonRepository, cfg voidgrid.SeasonConfig) *Manager {
	return &Manager{repo: repo, cfg: cfg}
}

// OnRollover registers a hook invoked after each season transition. Not safe
// to call once the manager is serving traffic.
func (m *Manager) OnRollover(hook RolloverHook) {
	m.hooks = append(m.hooks, hook)
}

// Current returns the active season, rolling the expired one over first if
// needed. Rollover is a global critical section: concurrent callers collapse
// into a single flight and all observe the same new season.
func (m *Manager) Current(ctx context.Context, now time.Time) (*models.Season, error) {
	m.mu.RLock()
	cached := m.cached
	m.mu.RUnlock()
	if cached != nil && cached.Active && !cached.Expired(now) {
		return cached, nil
	}

	v, err, _ := m.group.Do("rollover", func() (interface{}, error) {
		return m.resolveActive(ctx, now)
	})
	if err != nil {
		return nil, err
	}

	season := v.(*models.Season)
	m.mu.Lock()
	m.cached = season
	m.mu.Unlock()
	return season, nil
}

// Resolve returns the season with the given id, rolling over first so a
// request racing the boundary sees consistent state.
func (m *Manager) Resolve(ctx context.Context, id int64, now time.Time) (*models.Season, error) {
	current, err := m.Current(ctx, now)
	if err != nil {
		return nil, err
	}
	if current.ID == id {
		return current, nil
	}
	return m.repo.GetByID(ctx, id)
}

func (m *Manager) resolveActive(ctx context.Context, now time.Time) (*models.Season, error) {
	active, err := m.repo.GetActive(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		first := m.newSeason(1, now)
		slog.Info("Bootstrapping first season",
			slog.String("type", "season"),
			slog.Time("ends", first.EndTime))
		return m.repo.Bootstrap(ctx, first)
	}
	if err != nil {
		return nil, err
	}

	if !active.Expired(now) {
		return active, nil
	}

	next := m.newSeason(active.ID+1, now)
	rotated, err := m.repo.Rotate(ctx, active, next)
	if err != nil {
		return nil, err
	}

	for _, hook := range m.hooks {
		hook(ctx, active, rotated)
	}
	return rotated, nil
}

// newSeason builds a successor from the current cap configuration. Caps are
// copied onto the row so later config changes never touch running seasons.
func (m *Manager) newSeason(id int64, now time.Time) *models.Season {
	start := now.UTC()
	return &models.Season{
		ID:                id,
		StartTime:         start,
		EndTime:           start.Add(time.Duration(m.cfg.DurationDays) * 24 * time.Hour),
		DailyCreditCap:    m.cfg.DailyCreditCap,
		SeasonalCreditCap: m.cfg.SeasonalCreditCap,
		Active:            true,
		Status:            models.SeasonStatusActive,
		CreatedAt:         start,
	}
}
