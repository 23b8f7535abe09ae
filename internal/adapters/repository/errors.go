package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed       = errors.New("store closed")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
