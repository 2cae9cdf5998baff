package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTools")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	specs := h.tools.Specs()
	out := make([]toolSpecDTO, 0, len(specs))
	for _, spec := range specs {
		out = append(out, toolSpecDTO{Name: spec.Name, Description: spec.Description, Parameters: spec.Parameters})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// ExecuteTool runs a tool by name with the same argument shape the agent uses.
func (h *Handler) ExecuteTool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExecuteTool")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	var req toolExecuteRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	name := r.PathValue("name")
	result, err := h.tools.Execute(ctx, name, req.Arguments)
	if err != nil {
		h.logger.WarnContext(ctx, "execute tool failed", "tool", name, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolCompetitionHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolCompetitionHistory")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	code := r.PathValue("code")
	result, err := h.tools.GetCompetitionHistory(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "competition history failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolSearchCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolSearchCompetitions")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	limit, err := queryLimit(r, 5, 50)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	result, err := h.tools.SearchCompetitions(ctx, r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.WarnContext(ctx, "search competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolSimilarTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolSimilarTeams")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	var req similarTeamsRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.tools.FindSimilarTeams(ctx, req.Description, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "find similar teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolTeams")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	limit, err := queryLimit(r, 50, 200)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query := r.URL.Query()
	result, err := h.tools.GetTeams(ctx, query.Get("name"), query.Get("country"), limit)
	if err != nil {
		h.logger.WarnContext(ctx, "tool teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolSeasonStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolSeasonStatistics")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	seasonID, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("seasonID")), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: season id must be an integer", usecase.ErrInvalidInput))
		return
	}
	result, err := h.tools.GetSeasonStatistics(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "season statistics failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolSeasonsByDateRange(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolSeasonsByDateRange")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	start, err := firstQueryTime(r, "start", "startDate")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	end, err := firstQueryTime(r, "end", "endDate")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if start == nil || end == nil {
		writeError(ctx, w, fmt.Errorf("%w: start and end are required", usecase.ErrInvalidInput))
		return
	}

	result, err := h.tools.GetSeasonsByDateRange(ctx, *start, *end)
	if err != nil {
		h.logger.WarnContext(ctx, "seasons by date range failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolMatches")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	start, err := firstQueryTime(r, "start", "startDate")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	end, err := firstQueryTime(r, "end", "endDate")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryLimit(r, 50, 200)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.tools.GetMatches(ctx, start, end, r.URL.Query().Get("status"), limit)
	if err != nil {
		h.logger.WarnContext(ctx, "tool matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ToolSimilarMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToolSimilarMatches")
	defer span.End()

	if h.tools == nil {
		writeError(ctx, w, unavailable("agent tools"))
		return
	}

	var req similarMatchesRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.tools.SearchSimilarMatches(ctx, req.MatchContext, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "search similar matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}
