// Package multiplier models the reward modifiers owned by other subsystems
// (prestige rank, creator tier, district unlocks, mini-apps). The burn engine
// depends only on the Source interface; each owning subsystem plugs in its
// own implementation.
package multiplier

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Source yields one account's multiplier for a single modifier type.
type Source interface {
	Multiplier(ctx context.Context, address string) (float64, error)
}

// Neutral is the identity multiplier used when a source is absent or failing.
const Neutral = 1.0

// Static always returns the same multiplier. Useful as a default and in
// tests.
type Static float64

func (s Static) Multiplier(ctx context.Context, address string) (float64, error) {
	return float64(s), nil
}

// Func adapts a plain function to a Source.
type Func func(ctx context.Context, address string) (float64, error)

func (f Func) Multiplier(ctx context.Context, address string) (float64, error) {
	return f(ctx, address)
}

// Stack bundles the four modifier sources consulted on every burn.
type Stack struct {
	Prestige    Source
	CreatorTier Source
	District    Source
	MiniApp     Source
}

// NeutralStack returns a stack where every modifier is 1.0.
func NeutralStack() Stack {
	return Stack{
		Prestige:    Static(Neutral),
		CreatorTier: Static(Neutral),
		District:    Static(Neutral),
		MiniApp:     Static(Neutral),
	}
}

// resolve reads one source, degrading to the neutral multiplier on error so
// a flaky modifier subsystem can never block reward computation.
func resolve(ctx context.Context, s Source, name, address string) float64 {
	if s == nil {
		return Neutral
	}
	m, err := s.Multiplier(ctx, address)
	if err != nil {
		slog.Warn("Multiplier source failed, using neutral",
			slog.String("type", "burn"),
			slog.String("source", name),
			slog.String("address", address),
			slog.Any("error", err))
		return Neutral
	}
	if m < 0 {
		return Neutral
	}
	return m
}

// Values are the resolved multipliers for one burn.
type Values struct {
	Prestige    float64
	CreatorTier float64
	District    float64
	MiniApp     float64
}

// Resolve reads all four sources for the address.
func (st Stack) Resolve(ctx context.Context, address string) Values {
	return Values{
		Prestige:    resolve(ctx, st.Prestige, "prestige", address),
		CreatorTier: resolve(ctx, st.CreatorTier, "creator_tier", address),
		District:    resolve(ctx, st.District, "district", address),
		MiniApp:     resolve(ctx, st.MiniApp, "mini_app", address),
	}
}

const cacheSize = 10000

type cachedEntry struct {
	value     float64
	timestamp time.Time
}

// Cached wraps a Source with an LRU+TTL cache so hot accounts do not hammer
// the owning subsystem on every burn.
type Cached struct {
	inner  Source
	cache  *lru.Cache
	expiry time.Duration
}

func NewCached(inner Source, expiry time.Duration) *Cached {
	cache, _ := lru.New(cacheSize)
	return &Cached{inner: inner, cache: cache, expiry: expiry}
}

func (c *Cached) Multiplier(ctx context.Context, address string) (float64, error) {
	if v, ok := c.cache.Get(address); ok {
		entry := v.(cachedEntry)
		if time.Since(entry.timestamp) < c.expiry {
			return entry.value, nil
		}
		c.cache.Remove(address)
	}

	m, err := c.inner.Multiplier(ctx, address)
	if err != nil {
		return 0, err
	}
	c.cache.Add(address, cachedEntry{value: m, timestamp: time.Now()})
	return m, nil
}
