package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Season status values. A season moves PENDING -> ACTIVE -> ENDED and the
// transition is lazy: it happens on the first access after EndTime.
const (
	SeasonStatusPending = "pending"
	SeasonStatusActive  = "active"
	SeasonStatusEnded   = "ended"
)

// Season is immutable after insert except for Active/Status; exactly one
// row is active at a time (enforced by a partial unique index).
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:s"`

	ID        int64     `bun:"id,pk"`
	StartTime time.Time `bun:"start_time,notnull"`
	EndTime   time.Time `bun:"end_time,notnull"`

	// Caps are copied from configuration at creation so later config
	// changes never retroactively affect a running or past season.
	DailyCreditCap    float64 `bun:"daily_credit_cap,notnull"`
	SeasonalCreditCap float64 `bun:"seasonal_credit_cap,notnull"`

	Active bool   `bun:"active,notnull,default:false"`
	Status string `bun:"status,notnull,default:'active'"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Expired reports whether the season's end time has passed.
func (s *Season) Expired(now time.Time) bool {
	return !now.Before(s.EndTime)
}
