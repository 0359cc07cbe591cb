package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LifetimeState persists across seasons and never resets.
type LifetimeState struct {
	bun.BaseModel `bun:"table:lifetime_states,alias:ls"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Address string `bun:"address,notnull,unique"`

	TotalXPEarned int64 `bun:"total_xp_earned,notnull,default:0"`
	CurrentLevel  int   `bun:"current_level,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// RecomputeLevel derives the level from total XP at a fixed XP-per-level.
func (l *LifetimeState) RecomputeLevel(xpPerLevel int64) {
	if xpPerLevel <= 0 {
		return
	}
	l.CurrentLevel = int(l.TotalXPEarned / xpPerLevel)
}
