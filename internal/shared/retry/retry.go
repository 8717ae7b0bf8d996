// Package retry runs an operation under a bounded attempt policy.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy describes when and how long to wait between attempts.
type Policy struct {
	// MaxAttempts counts the first try. Values below 1 mean a single attempt.
	MaxAttempts int
	// Backoff returns the wait before attempt+1, given the failed attempt number (1-based) and its error.
	Backoff func(attempt int, err error) time.Duration
	// Retryable reports whether err may succeed on another attempt.
	Retryable func(err error) bool
	// Sleep waits for d or until ctx is done. Defaults to a timer-based sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy runs out of attempts.
// The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var (
		zero T
		last error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := fn(ctx, attempt)
		if err == nil {
			return out, nil
		}
		last = err
		if attempt == maxAttempts || p.Retryable == nil || !p.Retryable(err) {
			break
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt, err)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, last
}

// Exponential returns base * 2^(attempt-1), never exceeding limit.
func Exponential(base, limit time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if limit > 0 && d >= limit {
			return limit
		}
	}
	if limit > 0 && d > limit {
		return limit
	}
	return d
}

// Jitter returns a random duration in [0, max).
func Jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
