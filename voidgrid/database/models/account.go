package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Account is the per-address ledger row. Scores are stored as float64 so
// repeated lazy decay does not compound rounding error; values are floored
// to integers only at the presentation boundary.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Address string `bun:"address,notnull,unique"`

	CurrentScore  float64 `bun:"current_score,notnull,default:0"`
	LifetimeScore float64 `bun:"lifetime_score,notnull,default:0"`

	// VOID held by the address, reported by the wallet subsystem. Input to
	// the rate-limit holdings boost only.
	VoidHoldings float64 `bun:"void_holdings,notnull,default:0"`

	LastScoreUpdate time.Time `bun:"last_score_update,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

// Age returns how long the account has existed at now.
func (a *Account) Age(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}
