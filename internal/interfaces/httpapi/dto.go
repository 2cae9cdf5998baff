package httpapi

import (
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
)

type createTeamRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Country string `json:"country" validate:"omitempty,max=100"`
	League  string `json:"league" validate:"omitempty,max=100"`
}

type createPlayerRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Position     string `json:"position" validate:"omitempty,max=50"`
	JerseyNumber *int   `json:"jerseyNumber" validate:"omitempty,min=0,max=99"`
	DateOfBirth  string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	TeamID       string `json:"teamId"`
}

type createMatchRequest struct {
	HomeTeamID string    `json:"homeTeamId" validate:"required"`
	AwayTeamID string    `json:"awayTeamId" validate:"required,nefield=HomeTeamID"`
	MatchDate  time.Time `json:"matchDate" validate:"required"`
	Stadium    string    `json:"stadium" validate:"omitempty,max=200"`
}

type generatePredictionRequest struct {
	MatchID           string `json:"matchId" validate:"required"`
	AdditionalContext string `json:"additionalContext" validate:"omitempty,max=2000"`
}

type agentQueryRequest struct {
	Query   string `json:"query" validate:"required,max=2000"`
	MatchID string `json:"matchId"`
}

type requestPredictionRequest struct {
	AdditionalContext string `json:"additionalContext" validate:"omitempty,max=2000"`
}

type batchPredictionRequest struct {
	MatchIDs          []string `json:"matchIds" validate:"required,min=1,dive,required"`
	AdditionalContext string   `json:"additionalContext" validate:"omitempty,max=2000"`
}

type similarTeamsRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
	Limit       int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type similarMatchesRequest struct {
	MatchContext string `json:"matchContext" validate:"required,max=2000"`
	Limit        int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type competitionSyncJobRequest struct {
	Code       string `json:"code"`
	DispatchID string `json:"dispatch_id"`
}

type toolExecuteRequest struct {
	Arguments map[string]any `json:"arguments"`
}

type teamDTO struct {
	ID         string `json:"id"`
	ExternalID *int64 `json:"externalId,omitempty"`
	Name       string `json:"name"`
	ShortName  string `json:"shortName,omitempty"`
	TLA        string `json:"tla,omitempty"`
	Country    string `json:"country,omitempty"`
	League     string `json:"league,omitempty"`
	Crest      string `json:"crest,omitempty"`
	Website    string `json:"website,omitempty"`
	Founded    *int   `json:"founded,omitempty"`
	ClubColors string `json:"clubColors,omitempty"`
	Venue      string `json:"venue,omitempty"`
	HasVector  bool   `json:"hasEmbedding"`
	CreatedAt  string `json:"createdAt"`
}

type playerDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Position     string  `json:"position,omitempty"`
	JerseyNumber *int    `json:"jerseyNumber,omitempty"`
	DateOfBirth  string  `json:"dateOfBirth,omitempty"`
	TeamID       *string `json:"teamId,omitempty"`
	TeamName     string  `json:"teamName,omitempty"`
}

type matchDTO struct {
	ID           string `json:"id"`
	HomeTeamID   string `json:"homeTeamId"`
	HomeTeamName string `json:"homeTeamName"`
	AwayTeamID   string `json:"awayTeamId"`
	AwayTeamName string `json:"awayTeamName"`
	MatchDate    string `json:"matchDate"`
	Stadium      string `json:"stadium,omitempty"`
	HomeScore    *int   `json:"homeScore,omitempty"`
	AwayScore    *int   `json:"awayScore,omitempty"`
	Status       string `json:"status"`
}

type matchEventDTO struct {
	ID          string  `json:"id"`
	MatchID     string  `json:"matchId"`
	PlayerID    *string `json:"playerId,omitempty"`
	PlayerName  string  `json:"playerName,omitempty"`
	EventType   string  `json:"eventType"`
	Minute      int     `json:"minute"`
	Description string  `json:"description,omitempty"`
}

type competitionDTO struct {
	ID         string `json:"id"`
	ExternalID int64  `json:"externalId"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Type       string `json:"type,omitempty"`
	Emblem     string `json:"emblem,omitempty"`
	AreaName   string `json:"areaName,omitempty"`
	AreaCode   string `json:"areaCode,omitempty"`
	SyncedAt   string `json:"syncedAt,omitempty"`
}

type seasonDTO struct {
	ID               string   `json:"id"`
	ExternalID       int64    `json:"externalId"`
	CompetitionID    string   `json:"competitionId"`
	CompetitionName  string   `json:"competitionName,omitempty"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	CurrentMatchday  *int     `json:"currentMatchday,omitempty"`
	WinnerExternalID *int64   `json:"winnerExternalId,omitempty"`
	WinnerName       string   `json:"winnerName,omitempty"`
	Stages           []string `json:"stages,omitempty"`
}

type syncResultDTO struct {
	Success          bool            `json:"success"`
	Message          string          `json:"message"`
	Competition      *competitionDTO `json:"competition,omitempty"`
	SeasonsProcessed int             `json:"seasonsProcessed"`
}

type predictionDTO struct {
	ID                 string  `json:"id"`
	MatchID            string  `json:"matchId"`
	HomeWinProbability float32 `json:"homeWinProbability"`
	DrawProbability    float32 `json:"drawProbability"`
	AwayWinProbability float32 `json:"awayWinProbability"`
	PredictedHomeScore *int    `json:"predictedHomeScore,omitempty"`
	PredictedAwayScore *int    `json:"predictedAwayScore,omitempty"`
	Reasoning          string  `json:"reasoning"`
	ModelVersion       string  `json:"modelVersion"`
	Confidence         float32 `json:"confidence"`
	PredictedAt        string  `json:"predictedAt"`
}

type agentQueryDTO struct {
	Query       string   `json:"query"`
	Response    string   `json:"response"`
	ToolsUsed   []string `json:"toolsUsed"`
	GeneratedAt string   `json:"generatedAt"`
}

type sagaDTO struct {
	CorrelationID     string   `json:"correlationId"`
	CurrentState      string   `json:"currentState"`
	MatchID           string   `json:"matchId"`
	AdditionalContext string   `json:"additionalContext,omitempty"`
	PredictionID      string   `json:"predictionId,omitempty"`
	Confidence        *float32 `json:"confidence,omitempty"`
	RequestedAt       string   `json:"requestedAt"`
	CompletedAt       string   `json:"completedAt,omitempty"`
	ErrorMessage      string   `json:"errorMessage,omitempty"`
	RetryCount        int      `json:"retryCount"`
}

type requestAcceptedDTO struct {
	CorrelationID string `json:"correlationId"`
	StatusURL     string `json:"statusUrl,omitempty"`
}

type batchAcceptedDTO struct {
	BatchID        string   `json:"batchId"`
	CorrelationIDs []string `json:"correlationIds"`
	GraphURL       string   `json:"graphUrl"`
}

type toolSpecDTO struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type backfillDTO struct {
	Candidates int `json:"candidates"`
	Requested  int `json:"requested"`
}

type workflowEventDTO struct {
	ID           string         `json:"id"`
	WorkflowID   string         `json:"workflowId"`
	WorkflowType string         `json:"workflowType"`
	EventType    string         `json:"eventType"`
	NodeID       string         `json:"nodeId"`
	Data         map[string]any `json:"data,omitempty"`
	TraceID      string         `json:"traceId,omitempty"`
	SpanID       string         `json:"spanId,omitempty"`
	OccurredAt   string         `json:"occurredAt"`
}

type workflowNodeDTO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	StartedAt   string         `json:"startedAt,omitempty"`
	CompletedAt string         `json:"completedAt,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type workflowEdgeDTO struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

type workflowGraphDTO struct {
	WorkflowID   string            `json:"workflowId"`
	WorkflowType string            `json:"workflowType"`
	Status       string            `json:"status"`
	StartedAt    string            `json:"startedAt,omitempty"`
	CompletedAt  string            `json:"completedAt,omitempty"`
	Nodes        []workflowNodeDTO `json:"nodes"`
	Edges        []workflowEdgeDTO `json:"edges"`
	Metadata     map[string]any    `json:"metadata,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:         v.ID,
		ExternalID: v.ExternalID,
		Name:       v.Name,
		ShortName:  v.ShortName,
		TLA:        v.TLA,
		Country:    v.Country,
		League:     v.League,
		Crest:      v.Crest,
		Website:    v.Website,
		Founded:    v.Founded,
		ClubColors: v.ClubColors,
		Venue:      v.Venue,
		HasVector:  len(v.Embedding) > 0,
		CreatedAt:  formatTime(v.CreatedAt),
	}
}

func playerToDTO(v player.Player) playerDTO {
	dob := ""
	if v.DateOfBirth != nil {
		dob = v.DateOfBirth.UTC().Format(time.DateOnly)
	}
	return playerDTO{
		ID:           v.ID,
		Name:         v.Name,
		Position:     v.Position,
		JerseyNumber: v.JerseyNumber,
		DateOfBirth:  dob,
		TeamID:       v.TeamID,
		TeamName:     v.TeamName,
	}
}

func matchToDTO(v match.Match) matchDTO {
	return matchDTO{
		ID:           v.ID,
		HomeTeamID:   v.HomeTeamID,
		HomeTeamName: v.HomeTeamName,
		AwayTeamID:   v.AwayTeamID,
		AwayTeamName: v.AwayTeamName,
		MatchDate:    formatTime(v.MatchDate),
		Stadium:      v.Stadium,
		HomeScore:    v.HomeScore,
		AwayScore:    v.AwayScore,
		Status:       string(v.Status),
	}
}

func matchEventToDTO(v match.Event) matchEventDTO {
	return matchEventDTO{
		ID:          v.ID,
		MatchID:     v.MatchID,
		PlayerID:    v.PlayerID,
		PlayerName:  v.PlayerName,
		EventType:   v.EventType,
		Minute:      v.Minute,
		Description: v.Description,
	}
}

func competitionToDTO(v competition.Competition) competitionDTO {
	return competitionDTO{
		ID:         v.ID,
		ExternalID: v.ExternalID,
		Name:       v.Name,
		Code:       v.Code,
		Type:       v.Type,
		Emblem:     v.Emblem,
		AreaName:   v.AreaName,
		AreaCode:   v.AreaCode,
		SyncedAt:   formatTimePtr(v.SyncedAt),
	}
}

func seasonToDTO(v season.Season) seasonDTO {
	return seasonDTO{
		ID:               v.ID,
		ExternalID:       v.ExternalID,
		CompetitionID:    v.CompetitionID,
		CompetitionName:  v.CompetitionName,
		StartDate:        v.StartDateString(),
		EndDate:          v.EndDateString(),
		CurrentMatchday:  v.CurrentMatchday,
		WinnerExternalID: v.WinnerExternalID,
		WinnerName:       v.WinnerName,
		Stages:           v.Stages,
	}
}

func predictionToDTO(v prediction.MatchPrediction) predictionDTO {
	return predictionDTO{
		ID:                 v.ID,
		MatchID:            v.MatchID,
		HomeWinProbability: v.HomeWinProbability,
		DrawProbability:    v.DrawProbability,
		AwayWinProbability: v.AwayWinProbability,
		PredictedHomeScore: v.PredictedHomeScore,
		PredictedAwayScore: v.PredictedAwayScore,
		Reasoning:          v.Reasoning,
		ModelVersion:       v.ModelVersion,
		Confidence:         v.Confidence,
		PredictedAt:        formatTime(v.PredictedAt),
	}
}

func sagaToDTO(v predictionsaga.Instance) sagaDTO {
	return sagaDTO{
		CorrelationID:     v.CorrelationID,
		CurrentState:      string(v.CurrentState),
		MatchID:           v.MatchID,
		AdditionalContext: v.AdditionalContext,
		PredictionID:      v.PredictionID,
		Confidence:        v.Confidence,
		RequestedAt:       formatTime(v.RequestedAt),
		CompletedAt:       formatTimePtr(v.CompletedAt),
		ErrorMessage:      v.ErrorMessage,
		RetryCount:        v.RetryCount,
	}
}

func workflowEventToDTO(v workflow.Event) workflowEventDTO {
	return workflowEventDTO{
		ID:           v.ID,
		WorkflowID:   v.WorkflowID,
		WorkflowType: v.WorkflowType,
		EventType:    string(v.EventType),
		NodeID:       v.NodeID,
		Data:         v.Data,
		TraceID:      v.TraceID,
		SpanID:       v.SpanID,
		OccurredAt:   formatTime(v.OccurredAt),
	}
}

func workflowGraphToDTO(v workflow.Graph) workflowGraphDTO {
	nodes := make([]workflowNodeDTO, 0, len(v.Nodes))
	for _, n := range v.Nodes {
		nodes = append(nodes, workflowNodeDTO{
			ID:          n.ID,
			Name:        n.Name,
			Type:        n.Type,
			Status:      string(n.Status),
			StartedAt:   formatTimePtr(n.StartedAt),
			CompletedAt: formatTimePtr(n.CompletedAt),
			Metadata:    n.Metadata,
		})
	}
	edges := make([]workflowEdgeDTO, 0, len(v.Edges))
	for _, e := range v.Edges {
		edges = append(edges, workflowEdgeDTO{ID: e.ID, Source: e.Source, Target: e.Target, Label: e.Label})
	}
	return workflowGraphDTO{
		WorkflowID:   v.WorkflowID,
		WorkflowType: v.WorkflowType,
		Status:       v.Status,
		StartedAt:    formatTime(v.StartedAt),
		CompletedAt:  formatTimePtr(v.CompletedAt),
		Nodes:        nodes,
		Edges:        edges,
		Metadata:     v.Metadata,
	}
}
