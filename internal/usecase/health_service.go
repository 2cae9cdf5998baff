package usecase

import (
	"context"
	"sync"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck probes one dependency. A failing Critical check makes the
// service unhealthy; any other failure only degrades it.
type HealthCheck struct {
	Name     string
	Critical bool
	Probe    func(ctx context.Context) error
}

type HealthCheckResult struct {
	Name       string       `json:"name"`
	Status     HealthStatus `json:"status"`
	Error      string       `json:"error,omitempty"`
	DurationMS int64        `json:"duration_ms"`
}

type HealthReport struct {
	Status    HealthStatus        `json:"status"`
	Checks    []HealthCheckResult `json:"checks"`
	CheckedAt time.Time           `json:"checked_at"`
}

type HealthService struct {
	checks  []HealthCheck
	timeout time.Duration
	now     func() time.Time
}

func NewHealthService(timeout time.Duration, checks ...HealthCheck) *HealthService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthService{
		checks:  checks,
		timeout: timeout,
		now:     time.Now,
	}
}

// Check runs every probe concurrently, each bounded by the service timeout.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	results := make([]HealthCheckResult, len(s.checks))

	var wg sync.WaitGroup
	for i, check := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.run(ctx, check)
		}()
	}
	wg.Wait()

	status := HealthHealthy
	for i, result := range results {
		if result.Status == HealthHealthy {
			continue
		}
		if s.checks[i].Critical {
			status = HealthUnhealthy
			break
		}
		status = HealthDegraded
	}

	return HealthReport{
		Status:    status,
		Checks:    results,
		CheckedAt: s.now().UTC(),
	}
}

func (s *HealthService) run(ctx context.Context, check HealthCheck) HealthCheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := s.now()
	result := HealthCheckResult{Name: check.Name, Status: HealthHealthy}
	if check.Probe != nil {
		if err := check.Probe(ctx); err != nil {
			result.Status = HealthUnhealthy
			if !check.Critical {
				result.Status = HealthDegraded
			}
			result.Error = err.Error()
		}
	}
	result.DurationMS = s.now().Sub(started).Milliseconds()
	return result
}
