// Package quota enforces the per-actor operation quota over a rolling
// one-hour window.
package quota

import (
	"context"
	"strings"
	"time"
)

// Default quota configuration constants.
const (
	DefaultMaxOps = 60
	DefaultWindow = time.Hour
)

// Store is the durable half of the limiter. Implementations must make
// the check-and-increment atomic per actor: two concurrent calls must not
// both be allowed when only one slot remains.
type Store interface {
	ConsumeQuota(ctx context.Context, actor string, now time.Time, window time.Duration, maxOps int) (bool, error)
}

// Option applies a configuration option to the Limiter.
type Option func(*Limiter)

// WithMaxOps sets the number of operations allowed per actor per window.
func WithMaxOps(maxOps int) Option {
	return func(l *Limiter) {
		if maxOps > 0 {
			l.maxOps = maxOps
		}
	}
}

// WithWindow sets the window length.
func WithWindow(window time.Duration) Option {
	return func(l *Limiter) {
		if window > 0 {
			l.window = window
		}
	}
}

// WithClock sets the time source, injectable for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// Limiter evaluates one quota slot per command. Magnitude is deliberately
// ignored: the quota counts operations, not points.
type Limiter struct {
	store  Store
	maxOps int
	window time.Duration
	now    func() time.Time
}

// New creates a Limiter backed by store with configuration options.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		maxOps: DefaultMaxOps,
		window: DefaultWindow,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allow consumes one slot for actor. False means the quota is exhausted for
// the current window; that is a normal user-visible outcome, not an error.
func (l *Limiter) Allow(ctx context.Context, actor string) (bool, error) {
	return l.store.ConsumeQuota(ctx, strings.ToLower(actor), l.now(), l.window, l.maxOps)
}

// MaxOps reports the configured per-window cap, for user-facing denials.
func (l *Limiter) MaxOps() int { return l.maxOps }
