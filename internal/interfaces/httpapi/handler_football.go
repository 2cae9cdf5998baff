package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	query := r.URL.Query()
	teams, err := h.football.ListTeams(ctx, query.Get("name"), query.Get("country"))
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	teamID := r.PathValue("teamID")
	item, err := h.football.GetTeam(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, teamToDTO(item))
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	var req createTeamRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.football.CreateTeam(ctx, usecase.CreateTeamInput{
		Name:    req.Name,
		Country: req.Country,
		League:  req.League,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(item))
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	teamID := r.URL.Query().Get("teamId")
	players, err := h.football.ListPlayers(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePlayer")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	var req createPlayerRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.CreatePlayerInput{
		Name:         req.Name,
		Position:     req.Position,
		JerseyNumber: req.JerseyNumber,
		TeamID:       req.TeamID,
	}
	if req.DateOfBirth != "" {
		dob, err := season.ParseDate(req.DateOfBirth)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: dateOfBirth: %v", usecase.ErrInvalidInput, err))
			return
		}
		input.DateOfBirth = &dob
	}

	item, err := h.football.CreatePlayer(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "create player failed", "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(item))
}

// ListMatches accepts start/end (or from/to) bounds, status and limit.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	from, err := firstQueryTime(r, "start", "from")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	to, err := firstQueryTime(r, "end", "to")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryLimit(r, 0, 500)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.football.ListMatches(ctx, usecase.MatchListInput{
		From:   from,
		To:     to,
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func firstQueryTime(r *http.Request, keys ...string) (*time.Time, error) {
	for _, key := range keys {
		t, err := queryTime(r, key)
		if err != nil || t != nil {
			return t, err
		}
	}
	return nil, nil
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	matchID := r.PathValue("matchID")
	item, err := h.football.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	var req createMatchRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.football.CreateMatch(ctx, usecase.CreateMatchInput{
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		MatchDate:  req.MatchDate,
		Stadium:    req.Stadium,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "home_team_id", req.HomeTeamID, "away_team_id", req.AwayTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(item))
}

func (h *Handler) ListMatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchEvents")
	defer span.End()

	if h.football == nil {
		writeError(ctx, w, unavailable("football service"))
		return
	}

	matchID := r.PathValue("matchID")
	events, err := h.football.ListMatchEvents(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list match events failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, matchEventToDTO(e))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetition")
	defer span.End()

	if h.competitions == nil {
		writeError(ctx, w, unavailable("competition service"))
		return
	}

	code := r.PathValue("code")
	item, err := h.competitions.GetCompetition(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "get competition failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(item))
}

func (h *Handler) ListCompetitionSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitionSeasons")
	defer span.End()

	if h.competitions == nil {
		writeError(ctx, w, unavailable("competition service"))
		return
	}

	code := r.PathValue("code")
	seasons, err := h.competitions.ListSeasonsForCompetition(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, s := range seasons {
		items = append(items, seasonToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// SyncCompetition ingests a competition inline. ?refresh=true bypasses the
// provider cache. A failed sync still answers 200 with success=false.
func (h *Handler) SyncCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncCompetition")
	defer span.End()

	if h.competitions == nil {
		writeError(ctx, w, unavailable("competition service"))
		return
	}

	code := r.PathValue("code")
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	result, err := h.competitions.SyncCompetition(ctx, code, refresh)
	if err != nil {
		h.logger.WarnContext(ctx, "sync competition failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := syncResultDTO{
		Success:          result.Success,
		Message:          result.Message,
		SeasonsProcessed: result.SeasonsProcessed,
	}
	if result.Competition != nil {
		dto := competitionToDTO(*result.Competition)
		out.Competition = &dto
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// RequestCompetitionSync queues a sync on the bus. ?refresh=true bypasses the
// provider cache.
func (h *Handler) RequestCompetitionSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestCompetitionSync")
	defer span.End()

	if h.competitions == nil {
		writeError(ctx, w, unavailable("competition service"))
		return
	}

	code := r.PathValue("code")
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	correlationID, err := h.competitions.RequestCompetitionSync(ctx, code, refresh)
	if err != nil {
		h.logger.WarnContext(ctx, "request competition sync failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, requestAcceptedDTO{
		CorrelationID: correlationID,
		StatusURL:     "/v1/workflows/events/" + correlationID,
	})
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeason")
	defer span.End()

	if h.competitions == nil {
		writeError(ctx, w, unavailable("competition service"))
		return
	}

	raw := strings.TrimSpace(r.PathValue("seasonID"))
	externalID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || externalID <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: season id must be a positive integer", usecase.ErrInvalidInput))
		return
	}

	item, err := h.competitions.GetSeason(ctx, externalID)
	if err != nil {
		h.logger.WarnContext(ctx, "get season failed", "season_id", externalID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}
