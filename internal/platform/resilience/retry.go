package resilience

import (
	"context"
	"time"
)

// Backoff returns the wait before the given retry attempt (1-based).
type Backoff func(attempt int) time.Duration

// LinearBackoff waits step, 2*step, 3*step, ...
func LinearBackoff(step time.Duration) Backoff {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return time.Duration(attempt) * step
	}
}

// Retry calls fn up to maxRetries+1 times. fn reports whether its error is
// retryable; a non-retryable error or a cancelled ctx stops the loop.
func Retry(ctx context.Context, maxRetries int, backoff Backoff, fn func(attempt int) (bool, error)) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff == nil {
		backoff = LinearBackoff(time.Second)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		retryable, err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}

	return lastErr
}
