// Package resilience provides a retry loop over explicitly tagged attempt
// outcomes. Callers classify each attempt themselves; the loop never inspects
// error values to decide whether to try again.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind tags the result of a single attempt.
type Kind int

const (
	KindSuccess Kind = iota
	KindRetriable
	KindTerminal
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRetriable:
		return "retriable"
	case KindTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the classified result of one attempt.
type Outcome[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// Success wraps a successful attempt.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Kind: KindSuccess, Value: v}
}

// Retriable marks a failure worth another attempt.
func Retriable[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: KindRetriable, Err: err}
}

// Terminal marks a failure that must not be retried.
func Terminal[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: KindTerminal, Err: err}
}

// ExhaustedError is returned when every attempt was retriable and failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("resilience: gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Config controls Retry.
type Config struct {
	// MaxAttempts includes the first try. Values below 1 become 1.
	MaxAttempts int

	// Backoff returns the wait after the given failed attempt (1-based).
	// Nil means Exponential(time.Second).
	Backoff func(attempt int) time.Duration

	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error)
}

// Exponential returns base * 2^attempt. With a one second base the waits are
// 2s, 4s, 8s...
func Exponential(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		if attempt > 16 {
			attempt = 16
		}
		return base * time.Duration(1<<attempt)
	}
}

// NoBackoff retries immediately.
func NoBackoff(int) time.Duration { return 0 }

// Retry runs fn until it reports success or a terminal failure, or until
// MaxAttempts retriable failures have been seen. A terminal error is returned
// unchanged; exhaustion returns *ExhaustedError wrapping the last failure.
func Retry[T any](ctx context.Context, cfg Config, fn func(ctx context.Context, attempt int) Outcome[T]) (T, error) {
	var zero T
	maxAttempts := max(1, cfg.MaxAttempts)
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = Exponential(time.Second)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out := fn(ctx, attempt)
		switch out.Kind {
		case KindSuccess:
			return out.Value, nil
		case KindTerminal:
			if out.Err == nil {
				return zero, errors.New("resilience: terminal outcome without error")
			}
			return zero, out.Err
		case KindRetriable:
			lastErr = out.Err
			if lastErr == nil {
				lastErr = errors.New("resilience: retriable outcome without error")
			}
		default:
			return zero, fmt.Errorf("resilience: unknown outcome %s", out.Kind)
		}

		if attempt == maxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}
		if err := sleep(ctx, backoff(attempt)); err != nil {
			return zero, fmt.Errorf("resilience: interrupted after %d attempts: %w", attempt, errors.Join(err, lastErr))
		}
	}

	return zero, &ExhaustedError{Attempts: maxAttempts, Last: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
