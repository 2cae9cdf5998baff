package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards one outbound dependency (football-data, an LLM
// backend, QStash). A nil *CircuitBreaker allows every call.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig
	now  func() time.Time

	transitions metric.Int64Counter
	logger      *logging.Logger

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probes   int // half-open calls in flight
	passed   int // half-open calls that succeeded
}

// Snapshot is a point-in-time view used by readiness checks.
type Snapshot struct {
	Name                string
	State               CircuitState
	ConsecutiveFailures int
	OpenedAt            time.Time
}

// NewNamedCircuitBreaker builds a breaker from cfg, or returns nil when cfg
// is disabled. Zero tuning fields take the defaults.
func NewNamedCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	transitions, _ := otel.Meter("github.com/riskibarqy/dotmatchlens/internal/platform/resilience").
		Int64Counter("dotmatchlens.circuit.transitions", metric.WithDescription("Circuit breaker state changes."))
	return &CircuitBreaker{
		name:        name,
		cfg:         NormalizeCircuitBreakerConfig(cfg),
		now:         time.Now,
		transitions: transitions,
		logger:      logging.Default().Named("circuit"),
		state:       CircuitStateClosed,
	}
}

func (b *CircuitBreaker) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Allow reports whether a call may go out. Once the open timeout passes the
// breaker admits up to HalfOpenMaxReq probe calls.
func (b *CircuitBreaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.setState(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

// Record reports the outcome of a guarded call. Only errors matched by
// isFailure count against the breaker; nil isFailure counts every error.
func (b *CircuitBreaker) Record(err error, isFailure func(error) bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && (isFailure == nil || isFailure(err)) {
		b.fail()
		return
	}
	b.succeed()
}

func (b *CircuitBreaker) RecordSuccess() { b.Record(nil, nil) }

func (b *CircuitBreaker) RecordFailure() { b.Record(errors.New("failure"), nil) }

func (b *CircuitBreaker) succeed() {
	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.probes = max(0, b.probes-1)
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq && b.probes == 0 {
			b.setState(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) fail() {
	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.setState(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.setState(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

// setState moves to next and resets the counters that belong to the state
// being left. Callers hold mu.
func (b *CircuitBreaker) setState(next CircuitState) {
	prev := b.state
	b.state = next
	b.probes, b.passed = 0, 0
	switch next {
	case CircuitStateOpen:
		b.openedAt = b.now()
		b.logger.Warn("circuit opened", "dependency", b.name, "failures", b.failures, "retry_after", b.cfg.OpenTimeout)
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
		b.logger.Info("circuit closed", "dependency", b.name)
	}
	if b.transitions != nil {
		b.transitions.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("dependency", b.name),
			attribute.String("from", string(prev)),
			attribute.String("to", string(next)),
		))
	}
}

func (b *CircuitBreaker) State() CircuitState {
	return b.Snapshot().State
}

func (b *CircuitBreaker) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{State: CircuitStateClosed}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.state
	if state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		state = CircuitStateHalfOpen
	}
	return Snapshot{
		Name:                b.name,
		State:               state,
		ConsecutiveFailures: b.failures,
		OpenedAt:            b.openedAt,
	}
}
