package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
)

func TestCompetitionRepository_UpsertKeepsIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewCompetitionRepository()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := repo.Upsert(ctx, competition.Competition{ID: "c1", ExternalID: 2021, Name: "Premier League", Code: "pl", CreatedAt: created})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.UpdateEmbedding(ctx, first.ID, []float32{1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := repo.Upsert(ctx, competition.Competition{ID: "c2", ExternalID: 2021, Name: "Premier League", Code: "PL", CreatedAt: created.Add(time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != "c1" || !second.CreatedAt.Equal(created) {
		t.Fatalf("expected stored identity to be kept, got id=%s created=%v", second.ID, second.CreatedAt)
	}
	if len(second.Embedding) != 2 {
		t.Fatalf("expected embedding to survive upsert, got %v", second.Embedding)
	}

	got, ok, err := repo.GetByCode(ctx, " pl ")
	if err != nil || !ok {
		t.Fatalf("expected competition by normalized code, ok=%v err=%v", ok, err)
	}
	if got.Code != "PL" {
		t.Fatalf("expected code PL, got %s", got.Code)
	}
}

func TestCompetitionRepository_SearchByEmbeddingOrdersBySimilarity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewCompetitionRepository()
	_, _ = repo.Upsert(ctx, competition.Competition{ID: "c1", Name: "Premier League", Code: "PL", Embedding: []float32{1, 0}})
	_, _ = repo.Upsert(ctx, competition.Competition{ID: "c2", Name: "Bundesliga", Code: "BL1", Embedding: []float32{0, 1}})
	_, _ = repo.Upsert(ctx, competition.Competition{ID: "c3", Name: "Serie A", Code: "SA"})

	hits, err := repo.SearchByEmbedding(ctx, []float32{0.9, 0.1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected only embedded competitions, got %d", len(hits))
	}
	if hits[0].Competition.Code != "PL" || hits[0].Similarity <= hits[1].Similarity {
		t.Fatalf("unexpected ranking: %+v", hits)
	}

	text, err := repo.SearchByText(ctx, "liga", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(text) != 1 || text[0].Code != "BL1" {
		t.Fatalf("unexpected text search result: %+v", text)
	}
}

func TestSeasonRepository_ListWithinAndOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewSeasonRepository()
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	_, _ = repo.Upsert(ctx, season.Season{ID: "s1", ExternalID: 1, CompetitionID: "c1", StartDate: day(2023, 8, 11), EndDate: day(2024, 5, 19)})
	_, _ = repo.Upsert(ctx, season.Season{ID: "s2", ExternalID: 2, CompetitionID: "c1", StartDate: day(2024, 8, 16), EndDate: day(2025, 5, 25)})
	_, _ = repo.Upsert(ctx, season.Season{ID: "s3", ExternalID: 3, CompetitionID: "c2", StartDate: day(2025, 8, 15), EndDate: day(2026, 5, 24)})

	byComp, err := repo.ListByCompetition(ctx, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byComp) != 2 || byComp[0].ID != "s2" {
		t.Fatalf("expected newest season first, got %+v", byComp)
	}

	within, err := repo.ListWithin(ctx, day(2023, 1, 1), day(2025, 6, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(within) != 2 {
		t.Fatalf("expected 2 seasons fully inside the window, got %d", len(within))
	}

	refreshed, _ := repo.Upsert(ctx, season.Season{ID: "other", ExternalID: 2, CompetitionID: "c1", StartDate: day(2024, 8, 16), EndDate: day(2025, 5, 25), WinnerName: "Liverpool FC"})
	if refreshed.ID != "s2" {
		t.Fatalf("expected upsert to keep id s2, got %s", refreshed.ID)
	}
}

func TestTeamRepository_ListFilterAndMissingEmbedding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTeamRepository(SeedTeams())

	got, err := repo.List(ctx, team.Filter{Name: "fc", Country: "england", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Arsenal FC" {
		t.Fatalf("unexpected filtered teams: %+v", got)
	}

	if err := repo.UpdateEmbedding(ctx, TeamIDArsenal, []float32{1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	missing, err := repo.ListMissingEmbedding(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 3 {
		t.Fatalf("expected 3 teams without embeddings, got %d", len(missing))
	}

	if err := repo.Create(ctx, team.Team{ID: TeamIDArsenal, Name: "Duplicate"}); err == nil {
		t.Fatalf("expected duplicate team id to be rejected")
	}
}

func TestMatchRepository_ResolvesNamesAndOrdersEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teams := NewTeamRepository(SeedTeams())
	players := NewPlayerRepository(SeedPlayers(), teams)
	repo := NewMatchRepository(SeedMatches(), SeedMatchEvents(), teams, players)

	got, ok, err := repo.GetByID(ctx, MatchIDNorthLondon)
	if err != nil || !ok {
		t.Fatalf("expected seeded match, ok=%v err=%v", ok, err)
	}
	if got.HomeTeamName != "Arsenal FC" || got.AwayTeamName != "Chelsea FC" {
		t.Fatalf("unexpected team names: %s vs %s", got.HomeTeamName, got.AwayTeamName)
	}

	scheduled, err := repo.List(ctx, match.Filter{Status: match.StatusScheduled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].ID != MatchIDNorthWest {
		t.Fatalf("unexpected scheduled matches: %+v", scheduled)
	}

	events, err := repo.ListEvents(ctx, MatchIDNorthLondon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 || events[0].Minute != 23 || events[2].Minute != 81 {
		t.Fatalf("unexpected event order: %+v", events)
	}
	if events[0].PlayerName != "Bukayo Saka" {
		t.Fatalf("expected resolved player name, got %q", events[0].PlayerName)
	}
}

func TestPlayerRepository_ListByTeam(t *testing.T) {
	t.Parallel()

	teams := NewTeamRepository(SeedTeams())
	repo := NewPlayerRepository(SeedPlayers(), teams)

	got, err := repo.List(context.Background(), TeamIDArsenal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Bukayo Saka" || got[0].TeamName != "Arsenal FC" {
		t.Fatalf("unexpected players: %+v", got)
	}
}

func TestPredictionRepository_ListAndSearchSimilar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teams := NewTeamRepository(SeedTeams())
	matches := NewMatchRepository(SeedMatches(), nil, teams, nil)
	repo := NewPredictionRepository(matches)
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	_ = repo.Create(ctx, prediction.MatchPrediction{ID: "p1", MatchID: MatchIDNorthLondon, HomeWinProbability: 0.5, PredictedAt: base, ContextEmbedding: []float32{1, 0}})
	_ = repo.Create(ctx, prediction.MatchPrediction{ID: "p2", MatchID: MatchIDNorthLondon, HomeWinProbability: 0.6, PredictedAt: base.Add(time.Hour), ContextEmbedding: []float32{0, 1}})

	listed, err := repo.ListByMatch(ctx, MatchIDNorthLondon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "p2" {
		t.Fatalf("expected newest prediction first, got %+v", listed)
	}

	similar, err := repo.SearchSimilar(ctx, []float32{1, 0.1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(similar) != 1 || similar[0].HomeWinProbability != 0.5 {
		t.Fatalf("unexpected similar matches: %+v", similar)
	}
	if similar[0].HomeTeamName != "Arsenal FC" || similar[0].ActualHomeScore == nil || *similar[0].ActualHomeScore != 2 {
		t.Fatalf("expected match details to be joined, got %+v", similar[0])
	}
}

func TestPredictionSagaRepository_OptimisticUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPredictionSagaRepository()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	inst, _ := predictionsaga.Start(predictionsaga.Request{CorrelationID: "c1", MatchID: "m1"}, now)
	if err := repo.Insert(ctx, inst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Insert(ctx, inst); !errors.Is(err, predictionsaga.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	done, _, _ := inst.Complete(predictionsaga.Completion{CorrelationID: "c1", Success: true}, now)
	if err := repo.Update(ctx, done); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Update(ctx, done); !errors.Is(err, predictionsaga.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict on stale update, got %v", err)
	}

	later, _ := predictionsaga.Start(predictionsaga.Request{CorrelationID: "c2", MatchID: "m2"}, now.Add(time.Minute))
	earlier, _ := predictionsaga.Start(predictionsaga.Request{CorrelationID: "c3", MatchID: "m3"}, now.Add(-time.Minute))
	_ = repo.Insert(ctx, later)
	_ = repo.Insert(ctx, earlier)

	requested, err := repo.ListByState(ctx, predictionsaga.StateRequested, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requested) != 2 || requested[0].CorrelationID != "c3" {
		t.Fatalf("expected oldest requested first, got %+v", requested)
	}
}

func TestWorkflowEventRepository_CapsEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewWorkflowEventRepository(2)
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	for i, node := range []string{workflow.NodeReceiveRequest, workflow.NodeFetchMatch, workflow.NodeInvokeAgent} {
		_ = repo.Append(ctx, workflow.Event{WorkflowID: "wf", NodeID: node, EventType: workflow.EventStarted, OccurredAt: base.Add(time.Duration(i) * time.Second)})
	}

	events, err := repo.ListByWorkflow(ctx, "wf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[0].NodeID != workflow.NodeFetchMatch {
		t.Fatalf("expected the two latest events, got %+v", events)
	}
}
