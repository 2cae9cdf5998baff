package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	competitionmock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/competition"
	seasonmock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/season"
	"github.com/stretchr/testify/mock"
)

type stubCompetitionSource struct {
	competition ExternalCompetition
	err         error
	codes       []string
}

func (s *stubCompetitionSource) GetCompetition(_ context.Context, code string) (ExternalCompetition, error) {
	s.codes = append(s.codes, code)
	return s.competition, s.err
}

type recordingInvalidator struct {
	codes []string
}

func (r *recordingInvalidator) InvalidateCompetition(_ context.Context, code string) error {
	r.codes = append(r.codes, code)
	return nil
}

func premierLeague() ExternalCompetition {
	matchday := 38
	return ExternalCompetition{
		ID:      2021,
		Name:    "Premier League",
		Code:    "PL",
		Type:    "LEAGUE",
		Area:    ExternalArea{Name: "England", Code: "ENG"},
		RawJSON: []byte(`{"id":2021}`),
		Seasons: []ExternalSeason{
			{ID: 1564, StartDate: "2023-08-11", EndDate: "2024-05-19", CurrentMatchday: &matchday, Winner: &ExternalWinner{ID: 65, Name: "Manchester City FC"}},
			{ID: 2287, StartDate: "2024-08-16", EndDate: "2025-05-25"},
			{ID: 9999, StartDate: "not-a-date", EndDate: "2025-05-25"},
		},
	}
}

func TestCompetitionService_SyncCompetition_UpsertsCompetitionAndSeasons(t *testing.T) {
	t.Parallel()

	compRepo := competitionmock.NewRepository(t)
	seasonRepo := seasonmock.NewRepository(t)
	source := &stubCompetitionSource{competition: premierLeague()}
	embedder := &staticEmbedder{vector: []float32{0.1, 0.2}}
	svc := NewCompetitionService(compRepo, seasonRepo, source, nil, embedder, nil, &sequenceIDGenerator{prefix: "id"}, nil)
	svc.now = fixedClock(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))

	compRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(c competition.Competition) bool {
		return c.Code == "PL" && c.ExternalID == 2021 && c.AreaName == "England" && len(c.Embedding) == 2 && c.SyncedAt != nil
	})).Return(competition.Competition{ID: "comp-1", Name: "Premier League", Code: "PL"}, nil).Once()
	seasonRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(s season.Season) bool {
		return s.CompetitionID == "comp-1" && s.ExternalID == 1564 && s.WinnerName == "Manchester City FC"
	})).Return(season.Season{}, nil).Once()
	seasonRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(s season.Season) bool {
		return s.ExternalID == 2287 && s.WinnerExternalID == nil
	})).Return(season.Season{}, nil).Once()

	result, err := svc.SyncCompetition(context.Background(), " pl ", false)
	if err != nil {
		t.Fatalf("sync competition: %v", err)
	}
	if !result.Success || result.SeasonsProcessed != 2 {
		t.Fatalf("expected success with 2 seasons, got %+v", result)
	}
	if len(source.codes) != 1 || source.codes[0] != "PL" {
		t.Fatalf("expected provider to be asked for PL, got %v", source.codes)
	}
}

func TestCompetitionService_SyncCompetition_ProviderFailureIsReported(t *testing.T) {
	t.Parallel()

	source := &stubCompetitionSource{err: ErrDependencyUnavailable}
	svc := NewCompetitionService(competitionmock.NewRepository(t), seasonmock.NewRepository(t), source, nil, nil, nil, nil, nil)

	result, err := svc.SyncCompetition(context.Background(), "CL", false)
	if err != nil {
		t.Fatalf("provider failure must not be returned as error: %v", err)
	}
	if result.Success || result.Message == "" {
		t.Fatalf("expected failed result with message, got %+v", result)
	}
}

func TestCompetitionService_SyncCompetition_RefreshInvalidatesCache(t *testing.T) {
	t.Parallel()

	invalidator := &recordingInvalidator{}
	source := &stubCompetitionSource{err: errors.New("offline")}
	svc := NewCompetitionService(competitionmock.NewRepository(t), seasonmock.NewRepository(t), source, invalidator, nil, nil, nil, nil)

	if _, err := svc.SyncCompetition(context.Background(), "bl1", true); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(invalidator.codes) != 1 || invalidator.codes[0] != "BL1" {
		t.Fatalf("expected BL1 invalidated, got %v", invalidator.codes)
	}
}

func TestCompetitionService_SyncCompetition_RequiresCode(t *testing.T) {
	t.Parallel()

	svc := NewCompetitionService(nil, nil, nil, nil, nil, nil, nil, nil)
	if _, err := svc.SyncCompetition(context.Background(), " ", false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompetitionService_ListSeasonsForCompetition_UnknownCode(t *testing.T) {
	t.Parallel()

	compRepo := competitionmock.NewRepository(t)
	compRepo.On("GetByCode", mock.Anything, "XX").Return(competition.Competition{}, false, nil).Once()
	svc := NewCompetitionService(compRepo, seasonmock.NewRepository(t), nil, nil, nil, nil, nil, nil)

	if _, err := svc.ListSeasonsForCompetition(context.Background(), "xx"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompetitionService_RequestCompetitionSync_Publishes(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	svc := NewCompetitionService(nil, nil, nil, nil, nil, pub, &sequenceIDGenerator{prefix: "corr"}, nil)

	correlationID, err := svc.RequestCompetitionSync(context.Background(), "pl", true)
	if err != nil {
		t.Fatalf("request sync: %v", err)
	}
	published := pub.Published()
	if len(published) != 1 {
		t.Fatalf("expected one message, got %d", len(published))
	}
	req := published[0].(message.CompetitionSyncRequested)
	if req.CompetitionCode != "PL" || req.CorrelationID != correlationID || !req.Refresh {
		t.Fatalf("unexpected request %+v", req)
	}
}

type stubSyncer struct {
	result CompetitionSyncResult
	err    error
}

func (s stubSyncer) SyncCompetition(context.Context, string, bool) (CompetitionSyncResult, error) {
	return s.result, s.err
}

func TestCompetitionSyncConsumer_PublishesCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		syncer      stubSyncer
		wantSuccess bool
		wantSeasons int
	}{
		{name: "success", syncer: stubSyncer{result: CompetitionSyncResult{Success: true, SeasonsProcessed: 4}}, wantSuccess: true, wantSeasons: 4},
		{name: "provider failure", syncer: stubSyncer{result: CompetitionSyncResult{Message: "down"}}},
		{name: "unexpected error", syncer: stubSyncer{err: errors.New("boom")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pub := &recordingPublisher{}
			consumer := NewCompetitionSyncConsumer(tc.syncer, pub, nil, nil, nil)
			err := consumer.Handle(context.Background(), &message.CompetitionSyncRequested{CompetitionCode: "PL", CorrelationID: "c-1"})
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			completed := pub.Published()[0].(message.CompetitionSyncCompleted)
			if completed.Success != tc.wantSuccess || completed.SeasonsProcessed != tc.wantSeasons || completed.CorrelationID != "c-1" {
				t.Fatalf("unexpected completion %+v", completed)
			}
			if !tc.wantSuccess && completed.ErrorMessage == "" {
				t.Fatalf("failed completion must carry an error message")
			}
		})
	}
}
