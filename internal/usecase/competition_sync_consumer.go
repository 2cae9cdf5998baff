package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

// CompetitionSyncer is the part of CompetitionService the consumer needs.
type CompetitionSyncer interface {
	SyncCompetition(ctx context.Context, code string, refresh bool) (CompetitionSyncResult, error)
}

type CompetitionSyncConsumer struct {
	syncer    CompetitionSyncer
	publisher Publisher
	workflows *WorkflowService
	metrics   *WorkflowMetrics
	logger    *logging.Logger
	now       func() time.Time
}

func NewCompetitionSyncConsumer(syncer CompetitionSyncer, publisher Publisher, workflows *WorkflowService, metrics *WorkflowMetrics, logger *logging.Logger) *CompetitionSyncConsumer {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CompetitionSyncConsumer{
		syncer:    syncer,
		publisher: publisher,
		workflows: workflows,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle runs the sync and always answers with CompetitionSyncCompleted.
func (c *CompetitionSyncConsumer) Handle(ctx context.Context, msg message.Message) error {
	requested, ok := messageAs[message.CompetitionSyncRequested](msg)
	if !ok {
		return fmt.Errorf("%w: unexpected message %T", ErrInvalidInput, msg)
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionSyncConsumer.Handle")
	defer span.End()

	c.workflows.Record(ctx, requested.CorrelationID, workflow.TypeCompetitionSync, workflow.NodeStart, workflow.EventStarted, map[string]any{
		"competitionCode": requested.CompetitionCode,
		"refresh":         requested.Refresh,
	})

	completed := message.CompetitionSyncCompleted{
		CompetitionCode: requested.CompetitionCode,
		CorrelationID:   requested.CorrelationID,
	}
	result, err := c.syncer.SyncCompetition(ctx, requested.CompetitionCode, requested.Refresh)
	switch {
	case err != nil:
		completed.ErrorMessage = err.Error()
	case !result.Success:
		completed.ErrorMessage = result.Message
	default:
		completed.Success = true
		completed.SeasonsProcessed = result.SeasonsProcessed
	}
	completed.CompletedAt = c.now().UTC()
	c.metrics.MessageConsumed(ctx, requested.Topic(), completed.Success)

	endType := workflow.EventCompleted
	if !completed.Success {
		endType = workflow.EventFailed
		c.logger.WarnContext(ctx, "competition sync failed",
			"code", requested.CompetitionCode,
			"correlation_id", requested.CorrelationID,
			"error", completed.ErrorMessage,
		)
	}
	c.workflows.Record(ctx, requested.CorrelationID, workflow.TypeCompetitionSync, workflow.NodeEnd, endType, map[string]any{
		"seasonsProcessed": completed.SeasonsProcessed,
	})

	if err := c.publisher.Publish(ctx, completed); err != nil {
		return fmt.Errorf("publish competition sync completed: %w", err)
	}
	return nil
}
