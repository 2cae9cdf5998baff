package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_StopsOnSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Retry(context.Background(), 3, LinearBackoff(time.Millisecond), func(int) (bool, error) {
		calls++
		if calls < 2 {
			return true, errors.New("try again")
		}
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetry_NonRetryableErrorReturnsImmediately(t *testing.T) {
	t.Parallel()

	errFatal := errors.New("fatal")
	calls := 0
	err := Retry(context.Background(), 5, LinearBackoff(time.Millisecond), func(int) (bool, error) {
		calls++
		return false, errFatal
	})
	if !errors.Is(err, errFatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetry_ReturnsLastErrorAfterExhaustion(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Retry(context.Background(), 2, LinearBackoff(time.Millisecond), func(attempt int) (bool, error) {
		calls++
		return true, errors.New("attempt failed")
	})
	if err == nil {
		t.Fatalf("expected error after retries exhausted")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_CancelledContextStopsBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, LinearBackoff(time.Hour), func(int) (bool, error) {
		return true, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
