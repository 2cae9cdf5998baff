package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

type CompetitionSyncResult struct {
	Success          bool
	Message          string
	Competition      *competition.Competition
	SeasonsProcessed int
}

// CompetitionCacheInvalidator drops a cached provider payload so the next sync refetches it.
type CompetitionCacheInvalidator interface {
	InvalidateCompetition(ctx context.Context, code string) error
}

// CompetitionService ingests competitions and seasons from the football-data provider.
type CompetitionService struct {
	competitionRepo competition.Repository
	seasonRepo      season.Repository
	source          CompetitionSource
	invalidator     CompetitionCacheInvalidator
	embedder        EmbeddingGenerator
	publisher       Publisher
	idGen           id.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewCompetitionService(
	competitionRepo competition.Repository,
	seasonRepo season.Repository,
	source CompetitionSource,
	invalidator CompetitionCacheInvalidator,
	embedder EmbeddingGenerator,
	publisher Publisher,
	idGen id.Generator,
	logger *logging.Logger,
) *CompetitionService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CompetitionService{
		competitionRepo: competitionRepo,
		seasonRepo:      seasonRepo,
		source:          source,
		invalidator:     invalidator,
		embedder:        embedder,
		publisher:       publisher,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// SyncCompetition fetches the competition through the cache-first source and
// upserts it with all of its seasons. Provider and storage failures are
// reported through the result; only invalid input returns an error.
func (s *CompetitionService) SyncCompetition(ctx context.Context, code string, refresh bool) (CompetitionSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.SyncCompetition")
	defer span.End()

	code = competition.NormalizeCode(code)
	if code == "" {
		return CompetitionSyncResult{}, fmt.Errorf("%w: competition code is required", ErrInvalidInput)
	}
	if s.source == nil {
		return failedSync(fmt.Sprintf("Football data provider is not configured for %s", code)), nil
	}

	if refresh && s.invalidator != nil {
		if err := s.invalidator.InvalidateCompetition(ctx, code); err != nil {
			s.logger.WarnContext(ctx, "invalidate competition cache failed", "code", code, "error", err)
		}
	}

	ext, err := s.source.GetCompetition(ctx, code)
	if err != nil {
		s.logger.WarnContext(ctx, "fetch competition failed", "code", code, "error", err)
		return failedSync(fmt.Sprintf("Failed to fetch competition %s: %v", code, err)), nil
	}

	stored, err := s.upsertCompetition(ctx, code, ext)
	if err != nil {
		s.logger.ErrorContext(ctx, "store competition failed", "code", code, "error", err)
		return failedSync(fmt.Sprintf("Failed to store competition %s: %v", code, err)), nil
	}

	processed := 0
	for _, extSeason := range ext.Seasons {
		if err := s.upsertSeason(ctx, stored, extSeason); err != nil {
			s.logger.WarnContext(ctx, "store season failed",
				"code", code,
				"season_external_id", extSeason.ID,
				"error", err,
			)
			continue
		}
		processed++
	}

	s.logger.InfoContext(ctx, "competition synced", "code", code, "seasons", processed)
	return CompetitionSyncResult{
		Success:          true,
		Message:          fmt.Sprintf("Synced %s with %d seasons", stored.Name, processed),
		Competition:      &stored,
		SeasonsProcessed: processed,
	}, nil
}

func failedSync(msg string) CompetitionSyncResult {
	return CompetitionSyncResult{Success: false, Message: msg}
}

func (s *CompetitionService) upsertCompetition(ctx context.Context, code string, ext ExternalCompetition) (competition.Competition, error) {
	newID, err := s.idGen.NewID()
	if err != nil {
		return competition.Competition{}, fmt.Errorf("generate competition id: %w", err)
	}

	now := s.now().UTC()
	if ext.Code != "" {
		code = competition.NormalizeCode(ext.Code)
	}
	item := competition.Competition{
		ID:         newID,
		ExternalID: ext.ID,
		Name:       ext.Name,
		Code:       code,
		Type:       ext.Type,
		Emblem:     ext.Emblem,
		AreaName:   ext.Area.Name,
		AreaCode:   ext.Area.Code,
		AreaFlag:   ext.Area.Flag,
		RawJSON:    ext.RawJSON,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncedAt:   &now,
	}
	if err := item.Validate(); err != nil {
		return competition.Competition{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item.Embedding = embedOrNil(ctx, s.embedder, s.logger, competitionDescription(item))

	stored, err := s.competitionRepo.Upsert(ctx, item)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("upsert competition: %w", err)
	}
	return stored, nil
}

func (s *CompetitionService) upsertSeason(ctx context.Context, owner competition.Competition, ext ExternalSeason) error {
	start, err := season.ParseDate(ext.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start date: %v", ErrInvalidInput, err)
	}
	end, err := season.ParseDate(ext.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end date: %v", ErrInvalidInput, err)
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate season id: %w", err)
	}

	now := s.now().UTC()
	item := season.Season{
		ID:              newID,
		ExternalID:      ext.ID,
		CompetitionID:   owner.ID,
		CompetitionName: owner.Name,
		StartDate:       start,
		EndDate:         end,
		CurrentMatchday: ext.CurrentMatchday,
		Stages:          ext.Stages,
		RawJSON:         ext.RawJSON,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ext.Winner != nil {
		winnerID := ext.Winner.ID
		item.WinnerExternalID = &winnerID
		item.WinnerName = ext.Winner.Name
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item.Embedding = embedOrNil(ctx, s.embedder, s.logger, seasonDescription(owner.Name, item))

	if _, err := s.seasonRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert season: %w", err)
	}
	return nil
}

func (s *CompetitionService) GetCompetition(ctx context.Context, code string) (competition.Competition, error) {
	code = competition.NormalizeCode(code)
	if code == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition code is required", ErrInvalidInput)
	}

	item, exists, err := s.competitionRepo.GetByCode(ctx, code)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrNotFound, code)
	}
	return item, nil
}

func (s *CompetitionService) GetSeason(ctx context.Context, externalID int64) (season.Season, error) {
	if externalID <= 0 {
		return season.Season{}, fmt.Errorf("%w: season id must be positive", ErrInvalidInput)
	}

	item, exists, err := s.seasonRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%d", ErrNotFound, externalID)
	}
	return item, nil
}

// ListSeasonsForCompetition returns seasons newest first.
func (s *CompetitionService) ListSeasonsForCompetition(ctx context.Context, code string) ([]season.Season, error) {
	owner, err := s.GetCompetition(ctx, code)
	if err != nil {
		return nil, err
	}

	seasons, err := s.seasonRepo.ListByCompetition(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return seasons, nil
}

// RequestCompetitionSync publishes a sync request and returns its correlation id.
// refresh makes the consumer bypass the provider cache.
func (s *CompetitionService) RequestCompetitionSync(ctx context.Context, code string, refresh bool) (string, error) {
	code = competition.NormalizeCode(code)
	if code == "" {
		return "", fmt.Errorf("%w: competition code is required", ErrInvalidInput)
	}

	correlationID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate correlation id: %w", err)
	}
	requested := message.CompetitionSyncRequested{
		CompetitionCode: code,
		CorrelationID:   correlationID,
		Refresh:         refresh,
		RequestedAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, requested); err != nil {
		return "", fmt.Errorf("%w: publish competition sync request: %v", ErrDependencyUnavailable, err)
	}
	return correlationID, nil
}
