package voidgrid

import "errors"

// Cap and threshold outcomes are returned as typed errors so callers can
// branch with errors.Is; none of them leaves partial state behind.
var (
	// ErrInvalidAmount rejects negative or non-finite score/burn deltas
	// before any mutation.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrCapExceeded reports an exhausted message channel. The message is
	// not recorded and no XP is granted. This is an expected user-facing
	// outcome, not a fault.
	ErrCapExceeded = errors.New("rate limit cap exceeded")

	// ErrSeasonEnded reports a burn against a season that is no longer
	// active. Callers should re-query the current season and retry.
	ErrSeasonEnded = errors.New("season has ended")
)
