package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GeneratePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GeneratePrediction")
	defer span.End()

	if h.predictions == nil {
		writeError(ctx, w, unavailable("prediction service"))
		return
	}

	var req generatePredictionRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictions.GeneratePrediction(ctx, req.MatchID, req.AdditionalContext)
	if err != nil {
		h.logger.WarnContext(ctx, "generate prediction failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
}

func (h *Handler) ListMatchPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchPredictions")
	defer span.End()

	if h.predictions == nil {
		writeError(ctx, w, unavailable("prediction service"))
		return
	}

	matchID := r.PathValue("matchID")
	items, err := h.predictions.ListPredictionsForMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list predictions failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) QueryAgent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QueryAgent")
	defer span.End()

	if h.predictions == nil {
		writeError(ctx, w, unavailable("prediction service"))
		return
	}

	var req agentQueryRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.predictions.QueryAgent(ctx, req.Query, req.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "agent query failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	toolsUsed := result.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	writeSuccess(ctx, w, http.StatusOK, agentQueryDTO{
		Query:       result.Query,
		Response:    result.Response,
		ToolsUsed:   toolsUsed,
		GeneratedAt: formatTime(result.GeneratedAt),
	})
}

// RequestMatchPrediction starts a prediction saga and answers 202 with its
// correlation id; the body is optional.
func (h *Handler) RequestMatchPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestMatchPrediction")
	defer span.End()

	if h.sagas == nil {
		writeError(ctx, w, unavailable("prediction workflow"))
		return
	}

	var req requestPredictionRequest
	if r.ContentLength != 0 {
		if err := h.decodeJSON(ctx, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
		if err := h.validateRequest(ctx, req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	matchID := r.PathValue("matchID")
	correlationID, err := h.sagas.RequestPrediction(ctx, matchID, req.AdditionalContext)
	if err != nil {
		h.logger.WarnContext(ctx, "request prediction failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, requestAcceptedDTO{
		CorrelationID: correlationID,
		StatusURL:     "/v1/predictions/workflow/" + correlationID,
	})
}

func (h *Handler) RequestBatchPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestBatchPrediction")
	defer span.End()

	if h.sagas == nil {
		writeError(ctx, w, unavailable("prediction workflow"))
		return
	}

	var req batchPredictionRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.sagas.RequestBatch(ctx, req.MatchIDs, req.AdditionalContext)
	if err != nil {
		h.logger.WarnContext(ctx, "request batch prediction failed", "matches", len(req.MatchIDs), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, batchAcceptedDTO{
		BatchID:        result.BatchID,
		CorrelationIDs: result.CorrelationIDs,
		GraphURL:       "/v1/workflows/graph/" + result.BatchID,
	})
}

func (h *Handler) GetPredictionWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPredictionWorkflow")
	defer span.End()

	if h.sagas == nil {
		writeError(ctx, w, unavailable("prediction workflow"))
		return
	}

	correlationID := r.PathValue("correlationID")
	inst, err := h.sagas.GetStatus(ctx, correlationID)
	if err != nil {
		h.logger.WarnContext(ctx, "get prediction workflow failed", "correlation_id", correlationID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, sagaToDTO(inst))
}
