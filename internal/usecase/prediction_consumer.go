package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

// PredictionGenerator is the part of PredictionService the consumer needs.
type PredictionGenerator interface {
	GenerateForWorkflow(ctx context.Context, workflowID, matchID, additionalContext string) (prediction.MatchPrediction, error)
}

// PredictionConsumer turns MatchPredictionRequested into MatchPredictionCompleted.
// Transports redeliver on failure, so a request whose saga is already final is
// skipped and GenerateForWorkflow reuses the prediction stored for the workflow.
type PredictionConsumer struct {
	generator PredictionGenerator
	sagas     predictionsaga.Repository
	publisher Publisher
	workflows *WorkflowService
	metrics   *WorkflowMetrics
	logger    *logging.Logger
	now       func() time.Time
}

func NewPredictionConsumer(generator PredictionGenerator, sagas predictionsaga.Repository, publisher Publisher, workflows *WorkflowService, metrics *WorkflowMetrics, logger *logging.Logger) *PredictionConsumer {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionConsumer{
		generator: generator,
		sagas:     sagas,
		publisher: publisher,
		workflows: workflows,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle always publishes a completion, successful or not. It only returns an
// error when that completion cannot be published, so the bus may redeliver.
func (c *PredictionConsumer) Handle(ctx context.Context, msg message.Message) error {
	requested, ok := messageAs[message.MatchPredictionRequested](msg)
	if !ok {
		return fmt.Errorf("%w: unexpected message %T", ErrInvalidInput, msg)
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionConsumer.Handle")
	defer span.End()

	if c.finalized(ctx, requested.CorrelationID) {
		c.logger.DebugContext(ctx, "prediction request already finalized", "correlation_id", requested.CorrelationID)
		return nil
	}

	workflowID := requested.CorrelationID
	c.workflows.Record(ctx, workflowID, workflow.TypeMatchPrediction, workflow.NodeReceiveRequest, workflow.EventCompleted, map[string]any{
		"matchId": requested.MatchID,
	})

	completed := message.MatchPredictionCompleted{
		MatchID:       requested.MatchID,
		CorrelationID: requested.CorrelationID,
	}
	saved, err := c.generator.GenerateForWorkflow(ctx, workflowID, requested.MatchID, requested.AdditionalContext)
	if err != nil {
		c.logger.WarnContext(ctx, "prediction generation failed",
			"correlation_id", requested.CorrelationID,
			"match_id", requested.MatchID,
			"error", err,
		)
		completed.Success = false
		completed.ErrorMessage = err.Error()
	} else {
		confidence := saved.Confidence
		completed.Success = true
		completed.PredictionID = saved.ID
		completed.Confidence = &confidence
	}
	completed.CompletedAt = c.now().UTC()
	c.metrics.MessageConsumed(ctx, requested.Topic(), completed.Success)

	c.workflows.Record(ctx, workflowID, workflow.TypeMatchPrediction, workflow.NodePublishResult, workflow.EventStarted, nil)
	if err := c.publisher.Publish(ctx, completed); err != nil {
		c.workflows.Record(ctx, workflowID, workflow.TypeMatchPrediction, workflow.NodePublishResult, workflow.EventFailed, map[string]any{"error": err.Error()})
		return fmt.Errorf("publish prediction completed: %w", err)
	}
	c.workflows.Record(ctx, workflowID, workflow.TypeMatchPrediction, workflow.NodePublishResult, workflow.EventCompleted, map[string]any{
		"success": completed.Success,
	})
	return nil
}

// finalized reports whether the saga of correlationID has already completed
// or failed. Lookup errors count as not finalized; the generator dedups.
func (c *PredictionConsumer) finalized(ctx context.Context, correlationID string) bool {
	if c.sagas == nil || correlationID == "" {
		return false
	}
	inst, found, err := c.sagas.Get(ctx, correlationID)
	if err != nil {
		c.logger.WarnContext(ctx, "prediction saga lookup failed", "correlation_id", correlationID, "error", err)
		return false
	}
	return found && inst.CurrentState.Final()
}
