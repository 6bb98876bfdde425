package resilience

import (
	"context"
	"errors"
	"time"
)

// Do calls op up to maxAttempts+1 times total, sleeping
// baseDelay * 2^attempt between attempts (attempt is 0-indexed). The last
// error is returned once attempts are exhausted.
//
// When op fails with ErrCircuitOpen the remaining attempts are abandoned
// immediately: the dependency is known to be down, so waiting out the
// backoff schedule would only waste the retry budget. The breaker guards
// each individual attempt, not the retry loop as a whole.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), maxAttempts int, baseDelay time.Duration) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if errors.Is(err, ErrCircuitOpen) {
			return zero, err
		}
		if attempt >= maxAttempts {
			return zero, lastErr
		}

		delay := baseDelay << attempt
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
}
