package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHealthService_AggregatesStatus(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name   string
		checks []HealthCheck
		want   HealthStatus
	}{
		{name: "all healthy", checks: []HealthCheck{{Name: "db", Critical: true, Probe: ok}, {Name: "llm", Probe: ok}}, want: HealthHealthy},
		{name: "optional failure degrades", checks: []HealthCheck{{Name: "db", Critical: true, Probe: ok}, {Name: "llm", Probe: fail}}, want: HealthDegraded},
		{name: "critical failure", checks: []HealthCheck{{Name: "llm", Probe: fail}, {Name: "db", Critical: true, Probe: fail}}, want: HealthUnhealthy},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			report := NewHealthService(time.Second, tc.checks...).Check(context.Background())
			if report.Status != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, report.Status)
			}
			if len(report.Checks) != len(tc.checks) {
				t.Fatalf("expected %d results, got %d", len(tc.checks), len(report.Checks))
			}
		})
	}
}

func TestHealthService_ProbeTimeout(t *testing.T) {
	t.Parallel()

	slow := HealthCheck{Name: "redis", Probe: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	report := NewHealthService(20*time.Millisecond, slow).Check(context.Background())
	if report.Status != HealthDegraded || report.Checks[0].Error == "" {
		t.Fatalf("expected timed out optional probe to degrade, got %+v", report)
	}
}
