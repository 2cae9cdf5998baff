package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/infrastructure/messaging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

// DeliverMessage accepts envelopes pushed back by the HTTP queue. Handler
// failures answer 500 so the queue retries the delivery.
func (h *Handler) DeliverMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeliverMessage")
	defer span.End()

	if h.messages == nil {
		writeError(ctx, w, unavailable("message delivery"))
		return
	}

	topic := strings.TrimSpace(r.PathValue("topic"))
	if _, ok := message.New(topic); !ok {
		writeError(ctx, w, fmt.Errorf("%w: %v: %s", usecase.ErrNotFound, messaging.ErrUnknownTopic, topic))
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err))
		return
	}
	env, err := messaging.UnmarshalEnvelope(raw)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}
	if env.Topic != topic {
		writeError(ctx, w, fmt.Errorf("%w: envelope topic %q does not match path %q", usecase.ErrInvalidInput, env.Topic, topic))
		return
	}

	if err := h.messages.Deliver(ctx, raw); err != nil {
		if errors.Is(err, messaging.ErrUnknownTopic) {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		h.logger.ErrorContext(ctx, "message delivery failed", "topic", topic, "envelope_id", env.ID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "delivered", "id": env.ID})
}

func (h *Handler) BackfillEmbeddings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BackfillEmbeddings")
	defer span.End()

	if h.embeddings == nil {
		writeError(ctx, w, unavailable("embedding service"))
		return
	}

	limit, err := queryLimit(r, 0, 1000)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	result, err := h.embeddings.BackfillTeamEmbeddings(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "embedding backfill failed", "requested", result.Requested, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, backfillDTO{Candidates: result.Candidates, Requested: result.Requested})
}

// RunCompetitionSyncJob is the delayed job callback; each run requests the
// sync and enqueues its successor.
func (h *Handler) RunCompetitionSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCompetitionSyncJob")
	defer span.End()

	if h.syncJobs == nil {
		writeError(ctx, w, unavailable("competition sync scheduler"))
		return
	}

	var req competitionSyncJobRequest
	if r.ContentLength != 0 {
		if err := h.decodeJSON(ctx, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	result, err := h.syncJobs.RunJob(ctx, usecase.CompetitionSyncJobInput{Code: req.Code})
	if err != nil {
		h.logger.ErrorContext(ctx, "competition sync job failed", "code", req.Code, "dispatch_id", req.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) BootstrapCompetitionSyncJobs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BootstrapCompetitionSyncJobs")
	defer span.End()

	if h.syncJobs == nil {
		writeError(ctx, w, unavailable("competition sync scheduler"))
		return
	}

	result, err := h.syncJobs.Bootstrap(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "competition sync bootstrap failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, result)
}
