package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const (
	ToolGetCompetitionHistory = "get_competition_history"
	ToolFindSimilarTeams      = "find_similar_teams"
	ToolGetSeasonStatistics   = "get_season_statistics"
	ToolGetSeasonsByDateRange = "get_seasons_by_date_range"
	ToolSearchCompetitions    = "search_competitions"
	ToolGetTeams              = "get_teams"
	ToolGetMatches            = "get_matches"
	ToolSearchSimilarMatches  = "search_similar_matches"

	// textSearchSimilarity is reported for rows found by the text fallback.
	textSearchSimilarity = 0.5
	maxToolLimit         = 100
)

type CompetitionSummary struct {
	ID         string `json:"id"`
	ExternalID int64  `json:"externalId"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Type       string `json:"type"`
	Emblem     string `json:"emblem,omitempty"`
	Area       string `json:"area,omitempty"`
}

type SeasonSummary struct {
	ExternalID      int64  `json:"externalId"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	CurrentMatchday *int   `json:"currentMatchday,omitempty"`
	Winner          string `json:"winner,omitempty"`
}

type CompetitionHistory struct {
	Competition  CompetitionSummary `json:"competition"`
	Seasons      []SeasonSummary    `json:"seasons"`
	TotalSeasons int                `json:"totalSeasons"`
}

type SimilarTeam struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Country    string  `json:"country,omitempty"`
	League     string  `json:"league,omitempty"`
	Venue      string  `json:"venue,omitempty"`
	Similarity float64 `json:"similarity"`
}

type SeasonStatistics struct {
	ExternalID      int64  `json:"externalId"`
	CompetitionName string `json:"competitionName"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	CurrentMatchday *int   `json:"currentMatchday,omitempty"`
	Winner          string `json:"winner,omitempty"`
	IsCompleted     bool   `json:"isCompleted"`
	DaysRemaining   int    `json:"daysRemaining"`
	TotalMatchdays  int    `json:"totalMatchdays"`
}

type CompetitionHit struct {
	CompetitionSummary
	Similarity float64 `json:"similarity"`
}

type TeamSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	League  string `json:"league,omitempty"`
	Venue   string `json:"venue,omitempty"`
}

type MatchSummary struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	MatchDate time.Time `json:"matchDate"`
	Stadium   string    `json:"stadium,omitempty"`
	Status    string    `json:"status"`
	HomeScore *int      `json:"homeScore,omitempty"`
	AwayScore *int      `json:"awayScore,omitempty"`
}

type SimilarMatchSummary struct {
	MatchID            string    `json:"matchId"`
	HomeTeam           string    `json:"homeTeam"`
	AwayTeam           string    `json:"awayTeam"`
	MatchDate          time.Time `json:"matchDate"`
	ActualHomeScore    *int      `json:"actualHomeScore,omitempty"`
	ActualAwayScore    *int      `json:"actualAwayScore,omitempty"`
	HomeWinProbability float32   `json:"homeWinProbability"`
	DrawProbability    float32   `json:"drawProbability"`
	AwayWinProbability float32   `json:"awayWinProbability"`
	Similarity         float64   `json:"similarity"`
}

// AgentTools are the read-only lookups exposed to the language model, the
// HTTP tool routes and the MCP server.
type AgentTools struct {
	competitionRepo competition.Repository
	seasonRepo      season.Repository
	teamRepo        team.Repository
	matchRepo       match.Repository
	predictionRepo  prediction.Repository
	embedder        EmbeddingGenerator
	logger          *logging.Logger
	now             func() time.Time
}

func NewAgentTools(
	competitionRepo competition.Repository,
	seasonRepo season.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	embedder EmbeddingGenerator,
	logger *logging.Logger,
) *AgentTools {
	if logger == nil {
		logger = logging.Default()
	}
	return &AgentTools{
		competitionRepo: competitionRepo,
		seasonRepo:      seasonRepo,
		teamRepo:        teamRepo,
		matchRepo:       matchRepo,
		predictionRepo:  predictionRepo,
		embedder:        embedder,
		logger:          logger,
		now:             time.Now,
	}
}

func (t *AgentTools) GetCompetitionHistory(ctx context.Context, code string) (CompetitionHistory, error) {
	code = competition.NormalizeCode(code)
	if code == "" {
		return CompetitionHistory{}, fmt.Errorf("%w: competition code is required", ErrInvalidInput)
	}

	comp, exists, err := t.competitionRepo.GetByCode(ctx, code)
	if err != nil {
		return CompetitionHistory{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return CompetitionHistory{}, fmt.Errorf("%w: competition %s not found", ErrNotFound, code)
	}

	seasons, err := t.seasonRepo.ListByCompetition(ctx, comp.ID)
	if err != nil {
		return CompetitionHistory{}, fmt.Errorf("list seasons: %w", err)
	}

	out := CompetitionHistory{
		Competition:  toCompetitionSummary(comp),
		Seasons:      make([]SeasonSummary, 0, len(seasons)),
		TotalSeasons: len(seasons),
	}
	for _, s := range seasons {
		out.Seasons = append(out.Seasons, SeasonSummary{
			ExternalID:      s.ExternalID,
			StartDate:       s.StartDateString(),
			EndDate:         s.EndDateString(),
			CurrentMatchday: s.CurrentMatchday,
			Winner:          s.WinnerName,
		})
	}
	return out, nil
}

func (t *AgentTools) FindSimilarTeams(ctx context.Context, description string, limit int) ([]SimilarTeam, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	limit = clampLimit(limit, 5)

	if vector := embedOrNil(ctx, t.embedder, t.logger, description); len(vector) > 0 {
		scored, err := t.teamRepo.SearchByEmbedding(ctx, vector, limit)
		if err != nil {
			return nil, fmt.Errorf("search teams by embedding: %w", err)
		}
		out := make([]SimilarTeam, 0, len(scored))
		for _, item := range scored {
			out = append(out, toSimilarTeam(item.Team, item.Similarity))
		}
		return out, nil
	}

	teams, err := t.teamRepo.SearchByText(ctx, description, limit)
	if err != nil {
		return nil, fmt.Errorf("search teams by text: %w", err)
	}
	out := make([]SimilarTeam, 0, len(teams))
	for _, item := range teams {
		out = append(out, toSimilarTeam(item, textSearchSimilarity))
	}
	return out, nil
}

func (t *AgentTools) GetSeasonStatistics(ctx context.Context, seasonExternalID int64) (SeasonStatistics, error) {
	if seasonExternalID <= 0 {
		return SeasonStatistics{}, fmt.Errorf("%w: season id must be positive", ErrInvalidInput)
	}

	item, exists, err := t.seasonRepo.GetByExternalID(ctx, seasonExternalID)
	if err != nil {
		return SeasonStatistics{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return SeasonStatistics{}, fmt.Errorf("%w: season %d not found", ErrNotFound, seasonExternalID)
	}
	return t.seasonStatistics(item), nil
}

func (t *AgentTools) GetSeasonsByDateRange(ctx context.Context, start, end time.Time) ([]SeasonStatistics, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}

	seasons, err := t.seasonRepo.ListWithin(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list seasons within range: %w", err)
	}
	out := make([]SeasonStatistics, 0, len(seasons))
	for _, item := range seasons {
		out = append(out, t.seasonStatistics(item))
	}
	return out, nil
}

func (t *AgentTools) SearchCompetitions(ctx context.Context, query string, limit int) ([]CompetitionHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	limit = clampLimit(limit, 5)

	if vector := embedOrNil(ctx, t.embedder, t.logger, query); len(vector) > 0 {
		scored, err := t.competitionRepo.SearchByEmbedding(ctx, vector, limit)
		if err != nil {
			return nil, fmt.Errorf("search competitions by embedding: %w", err)
		}
		out := make([]CompetitionHit, 0, len(scored))
		for _, item := range scored {
			out = append(out, CompetitionHit{CompetitionSummary: toCompetitionSummary(item.Competition), Similarity: item.Similarity})
		}
		return out, nil
	}

	items, err := t.competitionRepo.SearchByText(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search competitions by text: %w", err)
	}
	out := make([]CompetitionHit, 0, len(items))
	for _, item := range items {
		out = append(out, CompetitionHit{CompetitionSummary: toCompetitionSummary(item), Similarity: textSearchSimilarity})
	}
	return out, nil
}

func (t *AgentTools) GetTeams(ctx context.Context, name, country string, limit int) ([]TeamSummary, error) {
	teams, err := t.teamRepo.List(ctx, team.Filter{
		Name:    strings.TrimSpace(name),
		Country: strings.TrimSpace(country),
		Limit:   clampLimit(limit, 50),
	})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	out := make([]TeamSummary, 0, len(teams))
	for _, item := range teams {
		out = append(out, TeamSummary{ID: item.ID, Name: item.Name, Country: item.Country, League: item.League, Venue: item.Venue})
	}
	return out, nil
}

// GetMatches filters by any combination of date bounds and status.
func (t *AgentTools) GetMatches(ctx context.Context, start, end *time.Time, status string, limit int) ([]MatchSummary, error) {
	filter := match.Filter{Limit: clampLimit(limit, 50)}
	if start != nil {
		filter.From = start.UTC()
	}
	if end != nil {
		filter.To = end.UTC()
	}
	if raw := strings.TrimSpace(status); raw != "" {
		parsed, ok := match.ParseStatus(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown match status %q", ErrInvalidInput, raw)
		}
		filter.Status = parsed
	}

	matches, err := t.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	out := make([]MatchSummary, 0, len(matches))
	for _, item := range matches {
		out = append(out, MatchSummary{
			ID:        item.ID,
			HomeTeam:  item.HomeTeamName,
			AwayTeam:  item.AwayTeamName,
			MatchDate: item.MatchDate,
			Stadium:   item.Stadium,
			Status:    string(item.Status),
			HomeScore: item.HomeScore,
			AwayScore: item.AwayScore,
		})
	}
	return out, nil
}

func (t *AgentTools) SearchSimilarMatches(ctx context.Context, matchContext string, limit int) ([]SimilarMatchSummary, error) {
	matchContext = strings.TrimSpace(matchContext)
	if matchContext == "" {
		return nil, fmt.Errorf("%w: context is required", ErrInvalidInput)
	}
	vector := embedOrNil(ctx, t.embedder, t.logger, matchContext)
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedding generator unavailable", ErrDependencyUnavailable)
	}

	similar, err := t.predictionRepo.SearchSimilar(ctx, vector, clampLimit(limit, 10))
	if err != nil {
		return nil, fmt.Errorf("search similar matches: %w", err)
	}
	out := make([]SimilarMatchSummary, 0, len(similar))
	for _, item := range similar {
		out = append(out, SimilarMatchSummary{
			MatchID:            item.MatchID,
			HomeTeam:           item.HomeTeamName,
			AwayTeam:           item.AwayTeamName,
			MatchDate:          item.MatchDate,
			ActualHomeScore:    item.ActualHomeScore,
			ActualAwayScore:    item.ActualAwayScore,
			HomeWinProbability: item.HomeWinProbability,
			DrawProbability:    item.DrawProbability,
			AwayWinProbability: item.AwayWinProbability,
			Similarity:         item.Similarity,
		})
	}
	return out, nil
}

// Specs describes every tool with a JSON schema for its arguments.
func (t *AgentTools) Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolGetCompetitionHistory,
			Description: "Get a football competition with all of its seasons, winners and current matchday.",
			Parameters:  objectSchema(map[string]any{"code": stringProp("Competition code, e.g. PL or CL")}, "code"),
		},
		{
			Name:        ToolFindSimilarTeams,
			Description: "Find teams whose profile is semantically similar to a description.",
			Parameters: objectSchema(map[string]any{
				"description": stringProp("Free text description of the team"),
				"limit":       intProp("Maximum results, default 5"),
			}, "description"),
		},
		{
			Name:        ToolGetSeasonStatistics,
			Description: "Get statistics of one season: dates, winner, completion and remaining days.",
			Parameters:  objectSchema(map[string]any{"seasonId": intProp("Provider season id")}, "seasonId"),
		},
		{
			Name:        ToolGetSeasonsByDateRange,
			Description: "List seasons that start and end within a date range.",
			Parameters: objectSchema(map[string]any{
				"startDate": stringProp("Start date, yyyy-MM-dd"),
				"endDate":   stringProp("End date, yyyy-MM-dd"),
			}, "startDate", "endDate"),
		},
		{
			Name:        ToolSearchCompetitions,
			Description: "Search competitions by meaning, e.g. 'top european club tournament'.",
			Parameters: objectSchema(map[string]any{
				"query": stringProp("Search text"),
				"limit": intProp("Maximum results, default 5"),
			}, "query"),
		},
		{
			Name:        ToolGetTeams,
			Description: "List teams filtered by name and country.",
			Parameters: objectSchema(map[string]any{
				"name":    stringProp("Name contains"),
				"country": stringProp("Exact country"),
				"limit":   intProp("Maximum results, default 50"),
			}),
		},
		{
			Name:        ToolGetMatches,
			Description: "List matches filtered by date range and status.",
			Parameters: objectSchema(map[string]any{
				"startDate": stringProp("Start date, yyyy-MM-dd"),
				"endDate":   stringProp("End date, yyyy-MM-dd"),
				"status":    stringProp("Scheduled, InProgress, Completed, Postponed or Cancelled"),
				"limit":     intProp("Maximum results, default 50"),
			}),
		},
		{
			Name:        ToolSearchSimilarMatches,
			Description: "Find past predicted matches whose context resembles the given text.",
			Parameters: objectSchema(map[string]any{
				"context": stringProp("Match context, e.g. 'Arsenal vs Chelsea derby in rain'"),
				"limit":   intProp("Maximum results, default 10"),
			}, "context"),
		},
	}
}

// Execute dispatches a tool call by name.
func (t *AgentTools) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AgentTools."+name)
	defer span.End()

	switch name {
	case ToolGetCompetitionHistory:
		return t.GetCompetitionHistory(ctx, argString(args, "code"))
	case ToolFindSimilarTeams:
		return t.FindSimilarTeams(ctx, argString(args, "description"), argInt(args, "limit"))
	case ToolGetSeasonStatistics:
		return t.GetSeasonStatistics(ctx, int64(argInt(args, "seasonId")))
	case ToolGetSeasonsByDateRange:
		start, err := argDate(args, "startDate")
		if err != nil {
			return nil, err
		}
		end, err := argDate(args, "endDate")
		if err != nil {
			return nil, err
		}
		if start == nil || end == nil {
			return nil, fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
		}
		return t.GetSeasonsByDateRange(ctx, *start, *end)
	case ToolSearchCompetitions:
		return t.SearchCompetitions(ctx, argString(args, "query"), argInt(args, "limit"))
	case ToolGetTeams:
		return t.GetTeams(ctx, argString(args, "name"), argString(args, "country"), argInt(args, "limit"))
	case ToolGetMatches:
		start, err := argDate(args, "startDate")
		if err != nil {
			return nil, err
		}
		end, err := argDate(args, "endDate")
		if err != nil {
			return nil, err
		}
		return t.GetMatches(ctx, start, end, argString(args, "status"), argInt(args, "limit"))
	case ToolSearchSimilarMatches:
		return t.SearchSimilarMatches(ctx, argString(args, "context"), argInt(args, "limit"))
	default:
		return nil, fmt.Errorf("%w: unknown tool %q", ErrInvalidInput, name)
	}
}

func (t *AgentTools) seasonStatistics(item season.Season) SeasonStatistics {
	today := t.now().UTC()
	return SeasonStatistics{
		ExternalID:      item.ExternalID,
		CompetitionName: item.CompetitionName,
		StartDate:       item.StartDateString(),
		EndDate:         item.EndDateString(),
		CurrentMatchday: item.CurrentMatchday,
		Winner:          item.WinnerName,
		IsCompleted:     item.IsCompleted(today),
		DaysRemaining:   item.DaysRemaining(today),
		TotalMatchdays:  item.TotalMatchdays(),
	}
}

func toCompetitionSummary(c competition.Competition) CompetitionSummary {
	return CompetitionSummary{
		ID:         c.ID,
		ExternalID: c.ExternalID,
		Name:       c.Name,
		Code:       c.Code,
		Type:       c.Type,
		Emblem:     c.Emblem,
		Area:       c.AreaName,
	}
}

func toSimilarTeam(item team.Team, similarity float64) SimilarTeam {
	return SimilarTeam{
		ID:         item.ID,
		Name:       item.Name,
		Country:    item.Country,
		League:     item.League,
		Venue:      item.Venue,
		Similarity: similarity,
	}
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxToolLimit {
		return maxToolLimit
	}
	return limit
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func argString(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// argInt tolerates JSON numbers, integers and numeric strings; anything else is zero.
func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func argDate(args map[string]any, key string) (*time.Time, error) {
	raw := argString(args, key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := season.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, key, err)
	}
	return &parsed, nil
}
