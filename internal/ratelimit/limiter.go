// Package ratelimit implements a fixed-window request limiter over a
// pluggable counter store.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/assessment-api/pkg/logging"
)

const (
	DefaultLimit  = 10
	DefaultWindow = 15 * time.Minute
)

// Store counts requests per key inside a fixed window. Increment must be
// atomic per key: the first call in a window starts it and returns count 1.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Decision is the result of a limit check.
type Decision struct {
	Allowed bool
	Count   int
	Limit   int
	ResetAt time.Time
	// Degraded is set when the store failed and the request was let through.
	Degraded bool
}

// RetryAfter is the time left in the current window, rounded up to a second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.IsZero() || !d.ResetAt.After(now) {
		return time.Second
	}
	return d.ResetAt.Sub(now).Truncate(time.Second) + time.Second
}

// Limiter admits at most limit requests per key per window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	logger *logging.Logger
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithKeyPrefix namespaces keys in a shared store.
func WithKeyPrefix(prefix string) Option {
	return func(l *Limiter) { l.prefix = prefix }
}

// New builds a Limiter. Non-positive limit or window fall back to defaults.
func New(store Store, limit int, window time.Duration, logger *logging.Logger, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("ratelimit: store is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = logging.Default()
	}
	l := &Limiter{store: store, limit: limit, window: window, prefix: "ratelimit:", logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Limit returns the per-window maximum.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow reports whether one more request for key fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	return l.Check(ctx, key).Allowed
}

// Check counts a request for key. A store failure lets the request through.
func (l *Limiter) Check(ctx context.Context, key string) Decision {
	if key == "" {
		key = "unknown"
	}
	count, resetAt, err := l.store.Increment(ctx, l.prefix+key, l.window)
	if err != nil {
		l.logger.Error("ratelimit: store unavailable, allowing request", "error", err)
		return Decision{Allowed: true, Limit: l.limit, Degraded: true}
	}
	return Decision{
		Allowed: count <= l.limit,
		Count:   count,
		Limit:   l.limit,
		ResetAt: resetAt,
	}
}
