package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Message channels an account can post to. Each carries its own daily cap.
const (
	ChannelGlobal = "global"
	ChannelZone   = "zone"
	ChannelDM     = "dm"
)

// RateLimitWindow counts messages for one (address, channel, UTC day).
// Rows for past days are dead weight and may be pruned at any time.
type RateLimitWindow struct {
	bun.BaseModel `bun:"table:rate_limit_windows,alias:rlw"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Address string `bun:"address,notnull"`
	Channel string `bun:"channel,notnull"`
	Day     string `bun:"day,notnull"`

	MessagesSent int `bun:"messages_sent,notnull,default:0"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
