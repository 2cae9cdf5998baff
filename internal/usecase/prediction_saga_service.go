package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/sourcegraph/conc/iter"
)

const (
	defaultSagaConflictRetries = 3
	maxBatchSize               = 50
	batchFanOut                = 8
)

type BatchPredictionResult struct {
	BatchID        string
	CorrelationIDs []string
}

// PredictionSagaService orchestrates the Requested -> Completed|Failed workflow
// of match predictions keyed by correlation id.
type PredictionSagaService struct {
	sagaRepo        predictionsaga.Repository
	matchRepo       match.Repository
	publisher       Publisher
	workflows       *WorkflowService
	metrics         *WorkflowMetrics
	idGen           id.Generator
	logger          *logging.Logger
	conflictRetries int
	now             func() time.Time
}

func NewPredictionSagaService(
	sagaRepo predictionsaga.Repository,
	matchRepo match.Repository,
	publisher Publisher,
	workflows *WorkflowService,
	metrics *WorkflowMetrics,
	idGen id.Generator,
	logger *logging.Logger,
) *PredictionSagaService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionSagaService{
		sagaRepo:        sagaRepo,
		matchRepo:       matchRepo,
		publisher:       publisher,
		workflows:       workflows,
		metrics:         metrics,
		idGen:           idGen,
		logger:          logger,
		conflictRetries: defaultSagaConflictRetries,
		now:             time.Now,
	}
}

// RequestPrediction starts the saga and publishes MatchPredictionRequested.
// The instance is stored before publishing so a fast completion always finds it.
func (s *PredictionSagaService) RequestPrediction(ctx context.Context, matchID, additionalContext string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionSagaService.RequestPrediction")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	_, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return "", fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	correlationID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate correlation id: %w", err)
	}

	requested := message.MatchPredictionRequested{
		MatchID:           matchID,
		CorrelationID:     correlationID,
		AdditionalContext: strings.TrimSpace(additionalContext),
		RequestedAt:       s.now().UTC(),
	}
	if _, err := s.start(ctx, requested); err != nil {
		return "", err
	}
	if err := s.publisher.Publish(ctx, requested); err != nil {
		s.abandon(ctx, requested, err)
		return "", fmt.Errorf("%w: publish prediction request: %v", ErrDependencyUnavailable, err)
	}

	s.metrics.PredictionRequested(ctx)
	s.logger.InfoContext(ctx, "prediction requested", "match_id", matchID, "correlation_id", correlationID)
	return correlationID, nil
}

// abandon fails a saga whose request never reached the bus, so it does not
// linger in Requested.
func (s *PredictionSagaService) abandon(ctx context.Context, requested message.MatchPredictionRequested, cause error) {
	failed := message.MatchPredictionCompleted{
		MatchID:       requested.MatchID,
		CorrelationID: requested.CorrelationID,
		Success:       false,
		ErrorMessage:  fmt.Sprintf("publish prediction request: %v", cause),
		CompletedAt:   s.now().UTC(),
	}
	if err := s.HandleCompleted(ctx, failed); err != nil {
		s.logger.ErrorContext(ctx, "fail unpublished prediction saga",
			"correlation_id", requested.CorrelationID,
			"error", err,
		)
	}
}

// RequestBatch requests predictions for every match concurrently, keeping input order.
func (s *PredictionSagaService) RequestBatch(ctx context.Context, matchIDs []string, additionalContext string) (BatchPredictionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionSagaService.RequestBatch")
	defer span.End()

	if len(matchIDs) == 0 {
		return BatchPredictionResult{}, fmt.Errorf("%w: at least one match id is required", ErrInvalidInput)
	}
	if len(matchIDs) > maxBatchSize {
		return BatchPredictionResult{}, fmt.Errorf("%w: at most %d matches per batch", ErrInvalidInput, maxBatchSize)
	}

	batchID, err := s.idGen.NewID()
	if err != nil {
		return BatchPredictionResult{}, fmt.Errorf("generate batch id: %w", err)
	}

	mapper := iter.Mapper[string, string]{MaxGoroutines: batchFanOut}
	correlationIDs, err := mapper.MapErr(matchIDs, func(matchID *string) (string, error) {
		return s.RequestPrediction(ctx, *matchID, additionalContext)
	})
	if err != nil {
		return BatchPredictionResult{}, fmt.Errorf("request batch predictions: %w", err)
	}

	s.workflows.Record(ctx, batchID, workflow.TypeBatchPrediction, workflow.NodeReceiveBatch, workflow.EventCompleted, map[string]any{
		"correlationIds": correlationIDs,
		"batchSize":      len(correlationIDs),
	})
	return BatchPredictionResult{BatchID: batchID, CorrelationIDs: correlationIDs}, nil
}

// HandleRequested creates the instance for requests published elsewhere.
// A request for a known correlation id is ignored.
func (s *PredictionSagaService) HandleRequested(ctx context.Context, msg message.Message) error {
	requested, ok := messageAs[message.MatchPredictionRequested](msg)
	if !ok {
		return fmt.Errorf("%w: unexpected message %T", ErrInvalidInput, msg)
	}

	created, err := s.start(ctx, requested)
	if err != nil {
		return err
	}
	if !created {
		s.logger.DebugContext(ctx, "prediction request already tracked", "correlation_id", requested.CorrelationID)
	}
	return nil
}

func (s *PredictionSagaService) start(ctx context.Context, requested message.MatchPredictionRequested) (bool, error) {
	inst, err := predictionsaga.Start(predictionsaga.Request{
		CorrelationID:     requested.CorrelationID,
		MatchID:           requested.MatchID,
		AdditionalContext: requested.AdditionalContext,
		RequestedAt:       requested.RequestedAt,
	}, s.now())
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.sagaRepo.Insert(ctx, inst); err != nil {
		if errors.Is(err, predictionsaga.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("insert saga: %w", err)
	}

	s.workflows.Record(ctx, inst.CorrelationID, workflow.TypeMatchPrediction, workflow.NodeStart, workflow.EventStarted, map[string]any{
		"matchId": inst.MatchID,
	})
	return true, nil
}

// HandleCompleted finalizes the instance. Completions for finalized or
// unknown instances are ignored; version conflicts are retried by re-reading.
func (s *PredictionSagaService) HandleCompleted(ctx context.Context, msg message.Message) error {
	completed, ok := messageAs[message.MatchPredictionCompleted](msg)
	if !ok {
		return fmt.Errorf("%w: unexpected message %T", ErrInvalidInput, msg)
	}

	completion := predictionsaga.Completion{
		CorrelationID: completed.CorrelationID,
		PredictionID:  completed.PredictionID,
		Success:       completed.Success,
		ErrorMessage:  completed.ErrorMessage,
		Confidence:    completed.Confidence,
		CompletedAt:   completed.CompletedAt,
	}

	for attempt := 0; attempt <= s.conflictRetries; attempt++ {
		inst, exists, err := s.sagaRepo.Get(ctx, completed.CorrelationID)
		if err != nil {
			return fmt.Errorf("get saga: %w", err)
		}
		if !exists {
			s.logger.WarnContext(ctx, "completion for unknown prediction saga ignored",
				"correlation_id", completed.CorrelationID,
				"match_id", completed.MatchID,
			)
			return nil
		}

		next, outcome, err := inst.Complete(completion, s.now())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if outcome == predictionsaga.OutcomeDuplicate {
			s.metrics.DuplicateEvent(ctx, completed.Topic())
			s.logger.InfoContext(ctx, "duplicate prediction completion ignored",
				"correlation_id", completed.CorrelationID,
				"state", inst.CurrentState,
			)
			return nil
		}

		if err := s.sagaRepo.Update(ctx, next); err != nil {
			if errors.Is(err, predictionsaga.ErrVersionConflict) {
				continue
			}
			return fmt.Errorf("update saga: %w", err)
		}

		s.metrics.PredictionFinished(ctx, completed.Success, next.Duration())
		endType := workflow.EventCompleted
		if next.CurrentState == predictionsaga.StateFailed {
			endType = workflow.EventFailed
		}
		s.workflows.Record(ctx, next.CorrelationID, workflow.TypeMatchPrediction, workflow.NodeEnd, endType, map[string]any{
			"state":        string(next.CurrentState),
			"predictionId": next.PredictionID,
			"error":        next.ErrorMessage,
		})
		s.logger.InfoContext(ctx, "prediction saga finalized",
			"correlation_id", next.CorrelationID,
			"state", next.CurrentState,
			"duration_ms", next.Duration().Milliseconds(),
		)
		return nil
	}

	return fmt.Errorf("update saga %s: %w", completed.CorrelationID, predictionsaga.ErrVersionConflict)
}

func (s *PredictionSagaService) GetStatus(ctx context.Context, correlationID string) (predictionsaga.Instance, error) {
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return predictionsaga.Instance{}, fmt.Errorf("%w: correlation id is required", ErrInvalidInput)
	}

	inst, exists, err := s.sagaRepo.Get(ctx, correlationID)
	if err != nil {
		return predictionsaga.Instance{}, fmt.Errorf("get saga: %w", err)
	}
	if !exists {
		return predictionsaga.Instance{}, fmt.Errorf("%w: %w: correlation=%s", ErrNotFound, ErrSagaNotFound, correlationID)
	}
	return inst, nil
}
