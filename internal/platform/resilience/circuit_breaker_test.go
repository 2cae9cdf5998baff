package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(t *testing.T, cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	t.Helper()

	cfg.Enabled = true
	b := NewNamedCircuitBreaker("football-data", cfg)
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	t.Parallel()

	b, now := newTestBreaker(t, CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenMaxReq: 1})

	steps := []struct {
		do   func()
		want CircuitState
	}{
		{do: b.RecordFailure, want: CircuitStateClosed},
		{do: b.RecordFailure, want: CircuitStateOpen},
		{do: func() { *now = now.Add(6 * time.Second) }, want: CircuitStateHalfOpen},
	}
	for i, step := range steps {
		step.do()
		if got := b.State(); got != step.want {
			t.Fatalf("step %d: state %s, want %s", i, got, step.want)
		}
	}

	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("second probe should be refused, got %v", err)
	}
	b.RecordSuccess()
	if snap := b.Snapshot(); snap.State != CircuitStateClosed || snap.ConsecutiveFailures != 0 || !snap.OpenedAt.IsZero() {
		t.Fatalf("expected a clean closed breaker, got %+v", snap)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	b, now := newTestBreaker(t, CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 2})
	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker to refuse, got %v", err)
	}

	*now = now.Add(time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe, got %v", err)
	}
	b.RecordFailure()
	snap := b.Snapshot()
	if snap.State != CircuitStateOpen || !snap.OpenedAt.Equal(*now) {
		t.Fatalf("failed probe should reopen from now, got %+v", snap)
	}
}

func TestCircuitBreaker_NilAllowsEverything(t *testing.T) {
	t.Parallel()

	var b *CircuitBreaker
	if err := b.Allow(); err != nil {
		t.Fatalf("expected nil breaker to allow, got %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed state for nil breaker, got %s", state)
	}
	if b.Name() != "" {
		t.Fatalf("nil breaker has no name")
	}
}

func TestNewNamedCircuitBreaker_AppliesDefaults(t *testing.T) {
	t.Parallel()

	if b := NewNamedCircuitBreaker("qstash", CircuitBreakerConfig{}); b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	b := NewNamedCircuitBreaker("qstash", CircuitBreakerConfig{Enabled: true})
	if b == nil || b.Name() != "qstash" {
		t.Fatalf("expected named breaker, got %+v", b)
	}
	if b.cfg != NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: true}) {
		t.Fatalf("expected default tuning, got %+v", b.cfg)
	}
}

func TestCircuitBreaker_RecordIgnoresNonFailures(t *testing.T) {
	t.Parallel()

	errRateLimited := errors.New("rate limited")
	errNotFound := errors.New("competition not found")
	isTransient := func(err error) bool { return errors.Is(err, errRateLimited) }
	b, _ := newTestBreaker(t, CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	b.Record(errNotFound, isTransient)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after a non-transient error, got %s", state)
	}
	b.Record(errRateLimited, isTransient)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after a transient error, got %s", state)
	}
}
