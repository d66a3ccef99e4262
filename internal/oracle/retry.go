package oracle

import (
	"context"
	"time"
)

// RetryPolicy bounds how a fallible oracle call is repeated: attempt count,
// doubling backoff capped at MaxDelay, and a per-attempt network timeout.
// One policy object is applied uniformly to every retryable call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration
}

// DefaultPolicy matches the documented contract: up to 3 attempts,
// exponential backoff from 500ms capped at 4s, 15s per-attempt timeout.
var DefaultPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    4 * time.Second,
	Timeout:     15 * time.Second,
}

// NoRetry performs a single attempt. Challenge fetch uses it: a missing or
// unreachable challenge is fatal to session start, never auto-retried.
var NoRetry = RetryPolicy{MaxAttempts: 1, Timeout: 15 * time.Second}

// Do runs fn until it succeeds, fails terminally, or attempts are
// exhausted. Only NetworkError is retried.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err = fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil || !IsNetworkError(err) {
			return err
		}
	}
	return err
}
