package resilience

import (
	"fmt"
	"time"
)

// CircuitBreakerConfig is the tuning of one outbound dependency's breaker.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// Dependency names the outbound integrations that carry a breaker.
type Dependency string

const (
	DependencyFootballData Dependency = "football_data"
	DependencyLLM          Dependency = "llm"
	DependencyQStash       Dependency = "qstash"
)

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// DefaultsFor returns the starting tuning per dependency. football-data
// answers 429 for a whole minute once the free quota is spent, and model
// backends fail slowly, so both stay open longer than the generic default.
func DefaultsFor(dep Dependency) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	switch dep {
	case DependencyFootballData:
		cfg.OpenTimeout = time.Minute
	case DependencyLLM:
		cfg.FailureThreshold = 3
		cfg.OpenTimeout = 30 * time.Second
		cfg.HalfOpenMaxReq = 1
	}
	return cfg
}

// Validate rejects an enabled config that cannot trip or recover.
func (c CircuitBreakerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("circuit failure threshold must be >= 1, got %d", c.FailureThreshold)
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("circuit open timeout must be > 0, got %s", c.OpenTimeout)
	}
	if c.HalfOpenMaxReq < 1 {
		return fmt.Errorf("circuit half-open max requests must be >= 1, got %d", c.HalfOpenMaxReq)
	}
	return nil
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
