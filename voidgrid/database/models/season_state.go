package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SeasonState tracks one account's credit usage and XP within one season.
// Credits are VOID amounts counted toward the zone schedule, distinct from
// the XP they produce. Rows are superseded (never deleted) at rollover: the
// next season simply starts a fresh row.
type SeasonState struct {
	bun.BaseModel `bun:"table:season_states,alias:ss"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Address  string `bun:"address,notnull"`
	SeasonID int64  `bun:"season_id,notnull"`

	DailyCreditsUsed float64 `bun:"daily_credits_used,notnull,default:0"`
	// UTC calendar day ("2006-01-02") the daily counter belongs to. Compared
	// against the current day on every touch; no background reset job.
	DailyResetDay string `bun:"daily_reset_day,notnull"`

	// Monotone within the season, clamped at the season's cap.
	SeasonalCreditsUsed float64 `bun:"seasonal_credits_used,notnull,default:0"`

	XPEarned      int64   `bun:"xp_earned,notnull,default:0"`
	AirdropWeight float64 `bun:"airdrop_weight,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
