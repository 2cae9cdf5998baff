package httpapi

import (
	"net/http"

	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerFootballRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/football/teams", handler.ListTeams)
	mux.HandleFunc("POST /v1/football/teams", handler.CreateTeam)
	mux.HandleFunc("GET /v1/football/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/football/players", handler.ListPlayers)
	mux.HandleFunc("POST /v1/football/players", handler.CreatePlayer)
	mux.HandleFunc("GET /v1/football/matches", handler.ListMatches)
	mux.HandleFunc("POST /v1/football/matches", handler.CreateMatch)
	mux.HandleFunc("GET /v1/football/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/football/matches/{matchID}/events", handler.ListMatchEvents)
	mux.HandleFunc("GET /v1/football/competitions/{code}", handler.GetCompetition)
	mux.HandleFunc("GET /v1/football/competitions/{code}/seasons", handler.ListCompetitionSeasons)
	mux.HandleFunc("POST /v1/football/competitions/sync/{code}", handler.SyncCompetition)
	mux.HandleFunc("POST /v1/football/sync-requests/{code}", handler.RequestCompetitionSync)
	mux.HandleFunc("GET /v1/football/seasons/{seasonID}", handler.GetSeason)
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/predictions/generate", handler.GeneratePrediction)
	mux.HandleFunc("GET /v1/predictions/match/{matchID}", handler.ListMatchPredictions)
	mux.HandleFunc("POST /v1/predictions/query", handler.QueryAgent)
	mux.HandleFunc("POST /v1/predictions/workflow/match/{matchID}", handler.RequestMatchPrediction)
	mux.HandleFunc("POST /v1/predictions/workflow/batch", handler.RequestBatchPrediction)
	mux.HandleFunc("GET /v1/predictions/workflow/{correlationID}", handler.GetPredictionWorkflow)
}

func registerToolRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/predictions/tools", handler.ListTools)
	mux.HandleFunc("POST /v1/predictions/tools/{name}/execute", handler.ExecuteTool)
	mux.HandleFunc("GET /v1/predictions/tools/competitions/search", handler.ToolSearchCompetitions)
	mux.HandleFunc("GET /v1/predictions/tools/competitions/{code}/history", handler.ToolCompetitionHistory)
	mux.HandleFunc("GET /v1/predictions/tools/teams", handler.ToolTeams)
	mux.HandleFunc("POST /v1/predictions/tools/teams/similar", handler.ToolSimilarTeams)
	mux.HandleFunc("GET /v1/predictions/tools/seasons", handler.ToolSeasonsByDateRange)
	mux.HandleFunc("GET /v1/predictions/tools/seasons/{seasonID}/statistics", handler.ToolSeasonStatistics)
	mux.HandleFunc("GET /v1/predictions/tools/matches", handler.ToolMatches)
	mux.HandleFunc("POST /v1/predictions/tools/matches/similar", handler.ToolSimilarMatches)
}

func registerWorkflowRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/workflows/graph/{workflowID}", handler.GetWorkflowGraph)
	mux.HandleFunc("GET /v1/workflows/events/{workflowID}", handler.ListWorkflowEvents)
	mux.HandleFunc("GET /v1/workflows/events/{workflowID}/stream", handler.StreamWorkflowEvents)
	mux.HandleFunc("GET /v1/workflows/active", handler.ListActiveWorkflows)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/messages/{topic}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.DeliverMessage)))
	mux.Handle("POST /v1/internal/embeddings/backfill", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.BackfillEmbeddings)))
	mux.Handle("POST "+usecase.CompetitionSyncJobPath, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCompetitionSyncJob)))
	mux.Handle("POST "+usecase.CompetitionSyncJobPath+"/bootstrap", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.BootstrapCompetitionSyncJobs)))
}
