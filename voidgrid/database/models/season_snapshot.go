package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SeasonSnapshot freezes one account's final standing when a season ends.
// Rows are written exactly once during rollover and feed the external
// airdrop distribution.
type SeasonSnapshot struct {
	bun.BaseModel `bun:"table:season_snapshots,alias:sn"`

	ID       int64  `bun:"id,pk,autoincrement"`
	SeasonID int64  `bun:"season_id,notnull"`
	Address  string `bun:"address,notnull"`

	XPEarned      int64   `bun:"xp_earned,notnull"`
	AirdropWeight float64 `bun:"airdrop_weight,notnull"`

	CapturedAt time.Time `bun:"captured_at,notnull"`
}
