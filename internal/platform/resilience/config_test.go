package resilience

import (
	"testing"
	"time"
)

func TestDefaultsFor(t *testing.T) {
	t.Parallel()

	if got := DefaultsFor(DependencyFootballData).OpenTimeout; got != time.Minute {
		t.Fatalf("football-data open timeout=%s want 1m", got)
	}
	llm := DefaultsFor(DependencyLLM)
	if llm.FailureThreshold != 3 || llm.HalfOpenMaxReq != 1 {
		t.Fatalf("unexpected llm defaults: %+v", llm)
	}
	if got := DefaultsFor(DependencyQStash); got != DefaultCircuitBreakerConfig() {
		t.Fatalf("qstash should use generic defaults, got %+v", got)
	}
}

func TestCircuitBreakerConfigValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     CircuitBreakerConfig
		wantErr bool
	}{
		"defaults":          {cfg: DefaultCircuitBreakerConfig()},
		"disabled ignores":  {cfg: CircuitBreakerConfig{}},
		"zero threshold":    {cfg: CircuitBreakerConfig{Enabled: true, OpenTimeout: time.Second, HalfOpenMaxReq: 1}, wantErr: true},
		"zero open timeout": {cfg: CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, HalfOpenMaxReq: 1}, wantErr: true},
		"zero half open":    {cfg: CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second}, wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
