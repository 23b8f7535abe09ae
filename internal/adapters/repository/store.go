// Package repository defines the score-ledger store interface and errors.
package repository

import (
	"context"
	"time"
)

// Score holds the dual counters kept for every item: total never resets
// through normal operation; temp is zeroed by an era reset.
type Score struct {
	Total int64
	Temp  int64
}

// Entry represents a leaderboard row as served by the read API.
type Entry struct {
	Rank  int    `json:"rank"`
	Item  string `json:"item"`
	Total int64  `json:"total"`
	Temp  int64  `json:"temp"`
}

// Store provides read/write access to score records and rate-limit records.
// Item and actor identity is case-insensitive; implementations normalize
// keys. Read-modify-write on a single record is atomic per key.
type Store interface {
	// Apply atomically upserts the item's record and adds delta to both
	// total and temp as a single durable unit.
	Apply(ctx context.Context, item string, delta int64) (Score, error)

	// Query reads the item's score, creating a zero record if absent so a
	// never-scored item reads as (0, 0).
	Query(ctx context.Context, item string) (Score, error)

	// ResetEra zeroes temp for every record and leaves total untouched.
	// It need not be atomic across the table, but each record's reset
	// serializes with in-flight Apply calls on that record.
	ResetEra(ctx context.Context) error

	// TopN returns the top-N entries ordered by total desc, name asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of items tracked.
	Count(ctx context.Context) int

	// ConsumeQuota atomically evaluates one quota slot for actor: a fresh
	// or expired window restarts at count 1 and allows; an open window
	// allows while count < maxOps; otherwise it denies without mutating.
	ConsumeQuota(ctx context.Context, actor string, now time.Time, window time.Duration, maxOps int) (bool, error)

	// Close releases the underlying storage.
	Close() error
}
