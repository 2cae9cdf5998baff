package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultBackfillLimit = 100
	backfillFanOut       = 4
)

type EmbeddingBackfillResult struct {
	Candidates int
	Requested  int
}

// EmbeddingService generates and stores vectors for teams, competitions and seasons.
type EmbeddingService struct {
	teamRepo        team.Repository
	competitionRepo competition.Repository
	seasonRepo      season.Repository
	embedder        EmbeddingGenerator
	publisher       Publisher
	metrics         *WorkflowMetrics
	idGen           id.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewEmbeddingService(
	teamRepo team.Repository,
	competitionRepo competition.Repository,
	seasonRepo season.Repository,
	embedder EmbeddingGenerator,
	publisher Publisher,
	metrics *WorkflowMetrics,
	idGen id.Generator,
	logger *logging.Logger,
) *EmbeddingService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EmbeddingService{
		teamRepo:        teamRepo,
		competitionRepo: competitionRepo,
		seasonRepo:      seasonRepo,
		embedder:        embedder,
		publisher:       publisher,
		metrics:         metrics,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// HandleRequested embeds the requested entity and publishes the outcome.
func (s *EmbeddingService) HandleRequested(ctx context.Context, msg message.Message) error {
	requested, ok := messageAs[message.EmbeddingGenerationRequested](msg)
	if !ok {
		return fmt.Errorf("%w: unexpected message %T", ErrInvalidInput, msg)
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.EmbeddingService.HandleRequested")
	defer span.End()

	completed := message.EmbeddingGenerationCompleted{
		EntityType:    requested.EntityType,
		EntityID:      requested.EntityID,
		CorrelationID: requested.CorrelationID,
	}
	dims, err := s.generate(ctx, requested)
	if err != nil {
		s.logger.WarnContext(ctx, "embedding generation failed",
			"entity_type", requested.EntityType,
			"entity_id", requested.EntityID,
			"error", err,
		)
		completed.ErrorMessage = err.Error()
	} else {
		completed.Success = true
		completed.Dimensions = &dims
	}
	completed.CompletedAt = s.now().UTC()
	s.metrics.MessageConsumed(ctx, requested.Topic(), completed.Success)

	if err := s.publisher.Publish(ctx, completed); err != nil {
		return fmt.Errorf("publish embedding completed: %w", err)
	}
	return nil
}

func (s *EmbeddingService) generate(ctx context.Context, requested message.EmbeddingGenerationRequested) (int, error) {
	if s.embedder == nil {
		return 0, fmt.Errorf("%w: embedding generator not configured", ErrDependencyUnavailable)
	}
	entityID := strings.TrimSpace(requested.EntityID)
	if entityID == "" {
		return 0, fmt.Errorf("%w: entity id is required", ErrInvalidInput)
	}

	text := strings.TrimSpace(requested.Text)
	if text == "" && requested.EntityType == message.EntityTeam {
		item, exists, err := s.teamRepo.GetByID(ctx, entityID)
		if err != nil {
			return 0, fmt.Errorf("get team: %w", err)
		}
		if !exists {
			return 0, fmt.Errorf("%w: team=%s", ErrNotFound, entityID)
		}
		text = teamDescription(item)
	}
	if text == "" {
		return 0, fmt.Errorf("%w: text is required for %s", ErrInvalidInput, requested.EntityType)
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", requested.EntityType, err)
	}

	switch requested.EntityType {
	case message.EntityTeam:
		err = s.teamRepo.UpdateEmbedding(ctx, entityID, vector)
	case message.EntityCompetition:
		err = s.competitionRepo.UpdateEmbedding(ctx, entityID, vector)
	case message.EntitySeason:
		err = s.seasonRepo.UpdateEmbedding(ctx, entityID, vector)
	default:
		return 0, fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, requested.EntityType)
	}
	if err != nil {
		return 0, fmt.Errorf("store %s embedding: %w", requested.EntityType, err)
	}
	return len(vector), nil
}

// HandleTeamIngested requests an embedding for a new team that was stored without one.
func (s *EmbeddingService) HandleTeamIngested(ctx context.Context, msg message.Message) error {
	ingested, ok := messageAs[message.TeamDataIngested](msg)
	if !ok {
		return fmt.Errorf("%w: unexpected message %T", ErrInvalidInput, msg)
	}

	item, exists, err := s.teamRepo.GetByID(ctx, ingested.TeamID)
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if !exists || len(item.Embedding) > 0 {
		return nil
	}
	return s.requestTeamEmbedding(ctx, item)
}

// BackfillTeamEmbeddings publishes generation requests for teams without a vector.
func (s *EmbeddingService) BackfillTeamEmbeddings(ctx context.Context, limit int) (EmbeddingBackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EmbeddingService.BackfillTeamEmbeddings")
	defer span.End()

	if limit <= 0 {
		limit = defaultBackfillLimit
	}
	teams, err := s.teamRepo.ListMissingEmbedding(ctx, limit)
	if err != nil {
		return EmbeddingBackfillResult{}, fmt.Errorf("list teams missing embedding: %w", err)
	}

	var requested atomic.Int64
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(backfillFanOut)
	for _, item := range teams {
		p.Go(func(ctx context.Context) error {
			if err := s.requestTeamEmbedding(ctx, item); err != nil {
				return err
			}
			requested.Add(1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return EmbeddingBackfillResult{Candidates: len(teams), Requested: int(requested.Load())}, err
	}

	s.logger.InfoContext(ctx, "team embedding backfill requested", "count", requested.Load())
	return EmbeddingBackfillResult{Candidates: len(teams), Requested: int(requested.Load())}, nil
}

func (s *EmbeddingService) requestTeamEmbedding(ctx context.Context, item team.Team) error {
	correlationID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate correlation id: %w", err)
	}
	req := message.EmbeddingGenerationRequested{
		EntityType:    message.EntityTeam,
		EntityID:      item.ID,
		CorrelationID: correlationID,
		Text:          teamDescription(item),
		RequestedAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, req); err != nil {
		return fmt.Errorf("publish embedding request team=%s: %w", item.ID, err)
	}
	return nil
}
