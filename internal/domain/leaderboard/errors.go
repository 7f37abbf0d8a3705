package leaderboard

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNegativeScore = errors.New("score must be non-negative")
)
