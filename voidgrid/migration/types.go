package migration

import (
	"time"
)

// LegacyAccount is the document shape the retired Node service kept in its
// Mongo "accounts" collection.
type LegacyAccount struct {
	Address     string    `bson:"address"`
	Rep         float64   `bson:"rep"`
	LifetimeRep float64   `bson:"lifetimerep"`
	Holdings    float64   `bson:"holdings"`
	XPTotal     float64   `bson:"xptotal"`
	LastUpdate  time.Time `bson:"lastupdate"`
	CreatedAt   time.Time `bson:"createdat"`
}

// TableStats tracks per-table import progress.
type TableStats struct {
	Read     int
	Inserted int
	Skipped  int
}

// ImportStats aggregates progress across the whole run.
type ImportStats struct {
	Tables    map[string]*TableStats
	StartTime time.Time
}
