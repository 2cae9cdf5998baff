package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
)

const defaultMaxWorkflowEvents = 1000

// WorkflowEventRepository keeps at most maxEvents per workflow, dropping the oldest.
type WorkflowEventRepository struct {
	mu        sync.RWMutex
	events    map[string][]workflow.Event
	maxEvents int
}

func NewWorkflowEventRepository(maxEvents int) *WorkflowEventRepository {
	if maxEvents <= 0 {
		maxEvents = defaultMaxWorkflowEvents
	}
	return &WorkflowEventRepository{events: make(map[string][]workflow.Event), maxEvents: maxEvents}
}

func (r *WorkflowEventRepository) Append(_ context.Context, event workflow.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := append(r.events[event.WorkflowID], event)
	if len(rows) > r.maxEvents {
		rows = rows[len(rows)-r.maxEvents:]
	}
	r.events[event.WorkflowID] = rows
	return nil
}

func (r *WorkflowEventRepository) ListByWorkflow(_ context.Context, workflowID string) ([]workflow.Event, error) {
	r.mu.RLock()
	out := append([]workflow.Event(nil), r.events[workflowID]...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
