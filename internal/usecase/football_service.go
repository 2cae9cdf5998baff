package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const defaultMatchWindow = 30 * 24 * time.Hour

type CreateTeamInput struct {
	Name    string
	Country string
	League  string
}

type CreatePlayerInput struct {
	Name         string
	Position     string
	JerseyNumber *int
	DateOfBirth  *time.Time
	TeamID       string
}

type CreateMatchInput struct {
	HomeTeamID string
	AwayTeamID string
	MatchDate  time.Time
	Stadium    string
}

type MatchListInput struct {
	From   *time.Time
	To     *time.Time
	Status string
	Limit  int
}

// FootballService owns the CRUD surface over teams, players, matches and events.
type FootballService struct {
	teamRepo   team.Repository
	playerRepo player.Repository
	matchRepo  match.Repository
	embedder   EmbeddingGenerator
	publisher  Publisher
	idGen      id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewFootballService(
	teamRepo team.Repository,
	playerRepo player.Repository,
	matchRepo match.Repository,
	embedder EmbeddingGenerator,
	publisher Publisher,
	idGen id.Generator,
	logger *logging.Logger,
) *FootballService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FootballService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		embedder:   embedder,
		publisher:  publisher,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *FootballService) ListTeams(ctx context.Context, name, country string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.ListTeams")
	defer span.End()

	teams, err := s.teamRepo.List(ctx, team.Filter{
		Name:    strings.TrimSpace(name),
		Country: strings.TrimSpace(country),
	})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *FootballService) GetTeam(ctx context.Context, teamID string) (team.Team, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	return item, nil
}

func (s *FootballService) CreateTeam(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.CreateTeam")
	defer span.End()

	teamID, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	now := s.now().UTC()
	item := team.Team{
		ID:        teamID,
		Name:      strings.TrimSpace(input.Name),
		Country:   strings.TrimSpace(input.Country),
		League:    strings.TrimSpace(input.League),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item.Embedding = embedOrNil(ctx, s.embedder, s.logger, teamDescription(item))

	if err := s.teamRepo.Create(ctx, item); err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	ingested := message.TeamDataIngested{
		TeamID:     item.ID,
		TeamName:   item.Name,
		Country:    item.Country,
		IngestedAt: now,
	}
	if err := s.publisher.Publish(ctx, ingested); err != nil {
		s.logger.WarnContext(ctx, "publish team ingested failed", "team_id", item.ID, "error", err)
	}

	return item, nil
}

func (s *FootballService) ListPlayers(ctx context.Context, teamID string) ([]player.Player, error) {
	players, err := s.playerRepo.List(ctx, strings.TrimSpace(teamID))
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (s *FootballService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.CreatePlayer")
	defer span.End()

	playerID, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	now := s.now().UTC()
	item := player.Player{
		ID:           playerID,
		Name:         strings.TrimSpace(input.Name),
		Position:     strings.TrimSpace(input.Position),
		JerseyNumber: input.JerseyNumber,
		DateOfBirth:  input.DateOfBirth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if teamID := strings.TrimSpace(input.TeamID); teamID != "" {
		owner, exists, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return player.Player{}, fmt.Errorf("get team: %w", err)
		}
		if !exists {
			return player.Player{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
		}
		item.TeamID = &owner.ID
		item.TeamName = owner.Name
	}

	if err := item.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.playerRepo.Create(ctx, item); err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	return item, nil
}

// ListMatches defaults to a window of one month either side of now.
func (s *FootballService) ListMatches(ctx context.Context, input MatchListInput) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.ListMatches")
	defer span.End()

	now := s.now().UTC()
	filter := match.Filter{
		From:  now.Add(-defaultMatchWindow),
		To:    now.Add(defaultMatchWindow),
		Limit: input.Limit,
	}
	if input.From != nil {
		filter.From = input.From.UTC()
	}
	if input.To != nil {
		filter.To = input.To.UTC()
	}
	if filter.To.Before(filter.From) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, ok := match.ParseStatus(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown match status %q", ErrInvalidInput, raw)
		}
		filter.Status = status
	}

	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

func (s *FootballService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func (s *FootballService) CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballService.CreateMatch")
	defer span.End()

	homeID := strings.TrimSpace(input.HomeTeamID)
	awayID := strings.TrimSpace(input.AwayTeamID)
	if homeID == "" || awayID == "" {
		return match.Match{}, fmt.Errorf("%w: home and away team ids are required", ErrInvalidInput)
	}
	if homeID == awayID {
		return match.Match{}, fmt.Errorf("%w: home and away teams must differ", ErrInvalidInput)
	}

	home, err := s.GetTeam(ctx, homeID)
	if err != nil {
		return match.Match{}, fmt.Errorf("home team: %w", err)
	}
	away, err := s.GetTeam(ctx, awayID)
	if err != nil {
		return match.Match{}, fmt.Errorf("away team: %w", err)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	item := match.Match{
		ID:           matchID,
		HomeTeamID:   home.ID,
		HomeTeamName: home.Name,
		AwayTeamID:   away.ID,
		AwayTeamName: away.Name,
		MatchDate:    input.MatchDate.UTC(),
		Stadium:      strings.TrimSpace(input.Stadium),
		Status:       match.StatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	return item, nil
}

func (s *FootballService) ListMatchEvents(ctx context.Context, matchID string) ([]match.Event, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}

	events, err := s.matchRepo.ListEvents(ctx, strings.TrimSpace(matchID))
	if err != nil {
		return nil, fmt.Errorf("list match events: %w", err)
	}
	return events, nil
}
