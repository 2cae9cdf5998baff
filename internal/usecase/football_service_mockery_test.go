package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	matchmock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/match"
	playermock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/player"
	teammock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/team"
	"github.com/stretchr/testify/mock"
)

func newFootballServiceForTest(t *testing.T) (*FootballService, *teammock.Repository, *playermock.Repository, *matchmock.Repository, *recordingPublisher) {
	t.Helper()

	teamRepo := teammock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	pub := &recordingPublisher{}
	svc := NewFootballService(teamRepo, playerRepo, matchRepo, nil, pub, &sequenceIDGenerator{prefix: "id"}, nil)
	svc.now = fixedClock(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	return svc, teamRepo, playerRepo, matchRepo, pub
}

func TestFootballService_CreateMatch_RejectsSameTeams(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newFootballServiceForTest(t)
	_, err := svc.CreateMatch(context.Background(), CreateMatchInput{
		HomeTeamID: "team-1",
		AwayTeamID: "team-1",
		MatchDate:  time.Date(2026, time.March, 10, 19, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFootballService_CreateMatch_UnknownAwayTeam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, teamRepo, _, _, _ := newFootballServiceForTest(t)
	teamRepo.On("GetByID", mock.MatchedBy(ctxMatcher(ctx)), "home").Return(team.Team{ID: "home", Name: "Arsenal"}, true, nil).Once()
	teamRepo.On("GetByID", mock.MatchedBy(ctxMatcher(ctx)), "away").Return(team.Team{}, false, nil).Once()

	_, err := svc.CreateMatch(ctx, CreateMatchInput{
		HomeTeamID: "home",
		AwayTeamID: "away",
		MatchDate:  time.Date(2026, time.March, 10, 19, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFootballService_CreateMatch_StoresScheduledMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, teamRepo, _, matchRepo, _ := newFootballServiceForTest(t)
	kickoff := time.Date(2026, time.March, 10, 19, 0, 0, 0, time.UTC)

	teamRepo.On("GetByID", mock.Anything, "home").Return(team.Team{ID: "home", Name: "Arsenal"}, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "away").Return(team.Team{ID: "away", Name: "Chelsea"}, true, nil).Once()
	matchRepo.On("Create", mock.Anything, mock.MatchedBy(func(m match.Match) bool {
		return m.ID == "id-1" && m.Status == match.StatusScheduled && m.MatchDate.Equal(kickoff) && m.Stadium == "Emirates"
	})).Return(nil).Once()

	got, err := svc.CreateMatch(ctx, CreateMatchInput{HomeTeamID: "home", AwayTeamID: "away", MatchDate: kickoff, Stadium: " Emirates "})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if got.HomeTeamName != "Arsenal" || got.AwayTeamName != "Chelsea" {
		t.Fatalf("expected resolved team names, got %q vs %q", got.HomeTeamName, got.AwayTeamName)
	}
}

func TestFootballService_CreatePlayer_UnknownTeam(t *testing.T) {
	t.Parallel()

	svc, teamRepo, _, _, _ := newFootballServiceForTest(t)
	teamRepo.On("GetByID", mock.Anything, "ghost").Return(team.Team{}, false, nil).Once()

	_, err := svc.CreatePlayer(context.Background(), CreatePlayerInput{Name: "Bukayo Saka", TeamID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFootballService_CreatePlayer_AttachesTeam(t *testing.T) {
	t.Parallel()

	svc, teamRepo, playerRepo, _, _ := newFootballServiceForTest(t)
	teamRepo.On("GetByID", mock.Anything, "t1").Return(team.Team{ID: "t1", Name: "Arsenal"}, true, nil).Once()
	playerRepo.On("Create", mock.Anything, mock.MatchedBy(func(p player.Player) bool {
		return p.TeamID != nil && *p.TeamID == "t1" && p.TeamName == "Arsenal"
	})).Return(nil).Once()

	jersey := 7
	got, err := svc.CreatePlayer(context.Background(), CreatePlayerInput{Name: "Bukayo Saka", Position: "RW", JerseyNumber: &jersey, TeamID: "t1"})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if got.Name != "Bukayo Saka" {
		t.Fatalf("unexpected player name: %q", got.Name)
	}
}

func TestFootballService_ListMatches_DefaultsToTwoMonthWindow(t *testing.T) {
	t.Parallel()

	svc, _, _, matchRepo, _ := newFootballServiceForTest(t)
	now := svc.now()
	matchRepo.On("List", mock.Anything, mock.MatchedBy(func(f match.Filter) bool {
		return f.From.Equal(now.Add(-defaultMatchWindow)) && f.To.Equal(now.Add(defaultMatchWindow)) && f.Status == ""
	})).Return([]match.Match{}, nil).Once()

	if _, err := svc.ListMatches(context.Background(), MatchListInput{}); err != nil {
		t.Fatalf("list matches: %v", err)
	}
}

func TestFootballService_ListMatches_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newFootballServiceForTest(t)
	_, err := svc.ListMatches(context.Background(), MatchListInput{Status: "Abandoned"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFootballService_CreateTeam_PublishesIngestedEvent(t *testing.T) {
	t.Parallel()

	svc, teamRepo, _, _, pub := newFootballServiceForTest(t)
	teamRepo.On("Create", mock.Anything, mock.MatchedBy(func(tm team.Team) bool {
		return tm.ID == "id-1" && tm.Name == "Arsenal" && tm.Country == "England"
	})).Return(nil).Once()

	if _, err := svc.CreateTeam(context.Background(), CreateTeamInput{Name: "Arsenal", Country: "England", League: "Premier League"}); err != nil {
		t.Fatalf("create team: %v", err)
	}

	published := pub.Published()
	if len(published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(published))
	}
	ingested, ok := published[0].(message.TeamDataIngested)
	if !ok || ingested.TeamID != "id-1" {
		t.Fatalf("unexpected published message: %#v", published[0])
	}
}

func TestFootballService_CreateTeam_RejectsBlankName(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newFootballServiceForTest(t)
	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{Name: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
