package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

func (h *Handler) GetWorkflowGraph(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWorkflowGraph")
	defer span.End()

	if h.workflows == nil {
		writeError(ctx, w, unavailable("workflow service"))
		return
	}

	workflowID := r.PathValue("workflowID")
	graph, err := h.workflows.Graph(ctx, workflowID)
	if err != nil {
		h.logger.WarnContext(ctx, "get workflow graph failed", "workflow_id", workflowID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, workflowGraphToDTO(graph))
}

func (h *Handler) ListWorkflowEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWorkflowEvents")
	defer span.End()

	if h.workflows == nil {
		writeError(ctx, w, unavailable("workflow service"))
		return
	}

	workflowID := r.PathValue("workflowID")
	events, err := h.workflows.ListEvents(ctx, workflowID)
	if err != nil {
		h.logger.WarnContext(ctx, "list workflow events failed", "workflow_id", workflowID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]workflowEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, workflowEventToDTO(e))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListActiveWorkflows(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListActiveWorkflows")
	defer span.End()

	if h.workflows == nil {
		writeError(ctx, w, unavailable("workflow service"))
		return
	}

	limit, err := queryLimit(r, 100, 500)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	items, err := h.workflows.ActiveWorkflows(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list active workflows failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]sagaDTO, 0, len(items))
	for _, item := range items {
		out = append(out, sagaToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// StreamWorkflowEvents pushes live events as server-sent events. Use "*" as
// the workflow id to follow every workflow.
func (h *Handler) StreamWorkflowEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.streamEnabled {
		writeError(ctx, w, fmt.Errorf("%w: workflow streaming is disabled", usecase.ErrForbidden))
		return
	}
	if h.workflows == nil {
		writeError(ctx, w, unavailable("workflow service"))
		return
	}

	workflowID := r.PathValue("workflowID")
	rc := http.NewResponseController(w)
	// The server write timeout would cut long-lived streams.
	_ = rc.SetWriteDeadline(time.Time{})

	events, cancel := h.workflows.Subscribe(workflowID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, rc, "connected", map[string]any{"workflowId": workflowID, "connectedAt": formatTime(h.now())}); err != nil {
		return
	}
	h.logger.DebugContext(ctx, "workflow stream connected", "workflow_id", workflowID)

	// A reconnecting EventSource sends the last id it saw; replay what it missed.
	replayed := map[string]struct{}{}
	if lastID := strings.TrimSpace(r.Header.Get("Last-Event-ID")); lastID != "" && workflowID != "*" {
		missed, err := h.workflows.ListEvents(ctx, workflowID)
		if err != nil {
			h.logger.WarnContext(ctx, "workflow stream replay failed", "workflow_id", workflowID, "error", err)
		}
		for _, event := range eventsAfter(missed, lastID) {
			if err := writeSSEEvent(w, rc, event); err != nil {
				return
			}
			replayed[event.ID] = struct{}{}
		}
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.DebugContext(context.WithoutCancel(ctx), "workflow stream closed", "workflow_id", workflowID)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, dup := replayed[event.ID]; dup {
				continue
			}
			if err := writeSSEEvent(w, rc, event); err != nil {
				return
			}
		case <-ticker.C:
			if err := writeSSE(w, rc, "heartbeat", map[string]string{"time": formatTime(h.now())}); err != nil {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, rc *http.ResponseController, event string, payload any) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return rc.Flush()
}

func writeSSEEvent(w http.ResponseWriter, rc *http.ResponseController, event workflow.Event) error {
	if event.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", event.ID); err != nil {
			return err
		}
	}
	return writeSSE(w, rc, "workflow_event", workflowEventToDTO(event))
}

// eventsAfter returns the events recorded after lastID. An unknown id
// replays nothing; the client already has the live stream.
func eventsAfter(events []workflow.Event, lastID string) []workflow.Event {
	for i, event := range events {
		if event.ID == lastID {
			return events[i+1:]
		}
	}
	return nil
}
