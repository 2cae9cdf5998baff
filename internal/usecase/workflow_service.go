package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const workflowSubscriberBuffer = 32

// WorkflowService records workflow step events, fans them out to live
// subscribers and renders run graphs. A nil *WorkflowService records nothing.
type WorkflowService struct {
	eventRepo workflow.Repository
	sagaRepo  predictionsaga.Repository
	idGen     id.Generator
	logger    *logging.Logger
	now       func() time.Time

	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan workflow.Event
}

func NewWorkflowService(
	eventRepo workflow.Repository,
	sagaRepo predictionsaga.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *WorkflowService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WorkflowService{
		eventRepo: eventRepo,
		sagaRepo:  sagaRepo,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
		subs:      make(map[string]map[int]chan workflow.Event),
	}
}

// Record stores one step event and pushes it to subscribers. Failures are
// logged; visualization never breaks the workflow itself.
func (s *WorkflowService) Record(ctx context.Context, workflowID, workflowType, nodeID string, eventType workflow.EventType, data map[string]any) {
	if s == nil || strings.TrimSpace(workflowID) == "" {
		return
	}

	eventID, err := s.idGen.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate workflow event id failed", "error", err)
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event := workflow.Event{
		ID:           eventID,
		WorkflowID:   workflowID,
		WorkflowType: workflowType,
		EventType:    eventType,
		NodeID:       nodeID,
		Data:         data,
		TraceID:      traceID,
		SpanID:       spanID,
		OccurredAt:   s.now().UTC(),
	}

	if s.eventRepo != nil {
		if err := s.eventRepo.Append(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "record workflow event failed",
				"workflow_id", workflowID,
				"node_id", nodeID,
				"error", err,
			)
		}
	}
	s.broadcast(ctx, event)
}

// Subscribe streams events of workflowID ("*" for every workflow) until cancel is called.
func (s *WorkflowService) Subscribe(workflowID string) (<-chan workflow.Event, func()) {
	ch := make(chan workflow.Event, workflowSubscriberBuffer)

	s.mu.Lock()
	s.nextID++
	subID := s.nextID
	if s.subs[workflowID] == nil {
		s.subs[workflowID] = make(map[int]chan workflow.Event)
	}
	s.subs[workflowID][subID] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[workflowID], subID)
			if len(s.subs[workflowID]) == 0 {
				delete(s.subs, workflowID)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *WorkflowService) broadcast(ctx context.Context, event workflow.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range []string{event.WorkflowID, "*"} {
		for _, ch := range s.subs[key] {
			select {
			case ch <- event:
			default:
				s.logger.DebugContext(ctx, "workflow subscriber lagging, event dropped",
					"workflow_id", event.WorkflowID,
					"node_id", event.NodeID,
				)
			}
		}
	}
}

func (s *WorkflowService) ListEvents(ctx context.Context, workflowID string) ([]workflow.Event, error) {
	workflowID = strings.TrimSpace(workflowID)
	if workflowID == "" {
		return nil, fmt.Errorf("%w: workflow id is required", ErrInvalidInput)
	}
	if s.eventRepo == nil {
		return []workflow.Event{}, nil
	}

	events, err := s.eventRepo.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list workflow events: %w", err)
	}
	return events, nil
}

// Graph picks the batch or match rendering from the recorded workflow type.
func (s *WorkflowService) Graph(ctx context.Context, workflowID string) (workflow.Graph, error) {
	events, err := s.ListEvents(ctx, workflowID)
	if err != nil {
		return workflow.Graph{}, err
	}
	if len(events) > 0 && events[0].WorkflowType == workflow.TypeBatchPrediction {
		return s.BatchPredictionGraph(ctx, workflowID)
	}
	return s.MatchPredictionGraph(ctx, workflowID)
}

// MatchPredictionGraph renders the prediction workflow keyed by correlation id.
func (s *WorkflowService) MatchPredictionGraph(ctx context.Context, workflowID string) (workflow.Graph, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WorkflowService.MatchPredictionGraph")
	defer span.End()

	events, err := s.ListEvents(ctx, workflowID)
	if err != nil {
		return workflow.Graph{}, err
	}

	inst, exists, err := s.sagaRepo.Get(ctx, workflowID)
	if err != nil {
		return workflow.Graph{}, fmt.Errorf("get saga: %w", err)
	}
	if !exists {
		if len(events) == 0 {
			return workflow.Graph{}, fmt.Errorf("%w: workflow=%s", ErrNotFound, workflowID)
		}
		matchID, _ := events[0].Data["matchId"].(string)
		return workflow.BuildMatchPredictionGraph(workflowID, matchID, statusFromEvents(events), events[0].OccurredAt, nil, events), nil
	}

	return workflow.BuildMatchPredictionGraph(
		workflowID,
		inst.MatchID,
		sagaStatus(inst.CurrentState),
		inst.RequestedAt,
		inst.CompletedAt,
		events,
	), nil
}

// BatchPredictionGraph renders a batch run from its receive event and the sagas it spawned.
func (s *WorkflowService) BatchPredictionGraph(ctx context.Context, batchID string) (workflow.Graph, error) {
	events, err := s.ListEvents(ctx, batchID)
	if err != nil {
		return workflow.Graph{}, err
	}
	if len(events) == 0 {
		return workflow.Graph{}, fmt.Errorf("%w: batch=%s", ErrNotFound, batchID)
	}

	correlationIDs := stringSlice(events[0].Data["correlationIds"])
	completed := 0
	failed := 0
	var lastDone *time.Time
	for _, correlationID := range correlationIDs {
		inst, exists, err := s.sagaRepo.Get(ctx, correlationID)
		if err != nil {
			return workflow.Graph{}, fmt.Errorf("get saga: %w", err)
		}
		if !exists || !inst.CurrentState.Final() {
			continue
		}
		completed++
		if inst.CurrentState == predictionsaga.StateFailed {
			failed++
		}
		if inst.CompletedAt != nil && (lastDone == nil || inst.CompletedAt.After(*lastDone)) {
			lastDone = inst.CompletedAt
		}
	}

	status := "running"
	if completed >= len(correlationIDs) {
		status = "completed"
		if failed == len(correlationIDs) && failed > 0 {
			status = "failed"
		}
	} else {
		lastDone = nil
	}

	return workflow.BuildBatchPredictionGraph(batchID, status, events[0].OccurredAt, lastDone, len(correlationIDs), completed), nil
}

// ActiveWorkflows lists prediction sagas still waiting for completion.
func (s *WorkflowService) ActiveWorkflows(ctx context.Context, limit int) ([]predictionsaga.Instance, error) {
	if limit <= 0 {
		limit = 100
	}
	items, err := s.sagaRepo.ListByState(ctx, predictionsaga.StateRequested, limit)
	if err != nil {
		return nil, fmt.Errorf("list active sagas: %w", err)
	}
	return items, nil
}

func sagaStatus(state predictionsaga.State) string {
	switch state {
	case predictionsaga.StateCompleted:
		return "completed"
	case predictionsaga.StateFailed:
		return "failed"
	default:
		return "running"
	}
}

func statusFromEvents(events []workflow.Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].EventType == workflow.EventFailed {
			return "failed"
		}
		if events[i].NodeID == workflow.NodePublishResult && events[i].EventType == workflow.EventCompleted {
			if success, ok := events[i].Data["success"].(bool); ok && !success {
				return "failed"
			}
			return "completed"
		}
	}
	return "running"
}

// stringSlice accepts both in-process []string values and JSON-decoded []any.
func stringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
