package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
)

// PredictionSagaRepository is the default saga store. Instances are lost on restart.
type PredictionSagaRepository struct {
	mu        sync.RWMutex
	instances map[string]predictionsaga.Instance
}

func NewPredictionSagaRepository() *PredictionSagaRepository {
	return &PredictionSagaRepository{instances: make(map[string]predictionsaga.Instance)}
}

func (r *PredictionSagaRepository) Get(_ context.Context, correlationID string) (predictionsaga.Instance, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[correlationID]
	return inst, ok, nil
}

func (r *PredictionSagaRepository) Insert(_ context.Context, inst predictionsaga.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[inst.CorrelationID]; exists {
		return predictionsaga.ErrAlreadyExists
	}
	r.instances[inst.CorrelationID] = inst
	return nil
}

func (r *PredictionSagaRepository) Update(_ context.Context, inst predictionsaga.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.instances[inst.CorrelationID]
	if !exists || stored.Version != inst.Version-1 {
		return predictionsaga.ErrVersionConflict
	}
	r.instances[inst.CorrelationID] = inst
	return nil
}

func (r *PredictionSagaRepository) ListByState(_ context.Context, state predictionsaga.State, limit int) ([]predictionsaga.Instance, error) {
	r.mu.RLock()
	out := make([]predictionsaga.Instance, 0)
	for _, inst := range r.instances {
		if inst.CurrentState == state {
			out = append(out, inst)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
