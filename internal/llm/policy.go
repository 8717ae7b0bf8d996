package llm

import (
	"errors"
	"time"

	"jobmatch-backend/internal/shared/retry"
)

const (
	MaxAttempts = 3
	BackoffBase = 500 * time.Millisecond
	MaxWait     = 30 * time.Second
	MaxJitter   = 250 * time.Millisecond
)

// RetryPolicy is the upstream retry policy: 3 attempts, retry on 429/5xx only,
// 500ms doubling backoff capped by Retry-After when the provider sends one,
// plus jitter, each wait capped at 30s.
func RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: MaxAttempts,
		Backoff:     Backoff,
		Retryable:   Retryable,
	}
}

// Backoff computes the wait after a failed attempt. A Retry-After shorter than
// the exponential step shortens the wait; a longer one never extends it.
func Backoff(attempt int, err error) time.Duration {
	wait := retry.Exponential(BackoffBase, MaxWait, attempt)
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.RetryAfter > 0 && upstream.RetryAfter < wait {
		wait = upstream.RetryAfter
	}
	wait += retry.Jitter(MaxJitter)
	if wait > MaxWait {
		wait = MaxWait
	}
	return wait
}
