package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

// MessageDeliverer runs bus handlers for an envelope pushed over HTTP.
type MessageDeliverer interface {
	Deliver(ctx context.Context, raw []byte) error
}

// Dependencies groups the services served over HTTP. Nil services answer
// with 503 on their routes.
type Dependencies struct {
	Football      *usecase.FootballService
	Competitions  *usecase.CompetitionService
	Predictions   *usecase.PredictionService
	Sagas         *usecase.PredictionSagaService
	Tools         *usecase.AgentTools
	Embeddings    *usecase.EmbeddingService
	Workflows     *usecase.WorkflowService
	Health        *usecase.HealthService
	Messages      MessageDeliverer
	SyncJobs      *usecase.CompetitionSyncScheduler
	StreamEnabled bool
	Heartbeat     time.Duration
}

type Handler struct {
	football      *usecase.FootballService
	competitions  *usecase.CompetitionService
	predictions   *usecase.PredictionService
	sagas         *usecase.PredictionSagaService
	tools         *usecase.AgentTools
	embeddings    *usecase.EmbeddingService
	workflows     *usecase.WorkflowService
	health        *usecase.HealthService
	messages      MessageDeliverer
	syncJobs      *usecase.CompetitionSyncScheduler
	streamEnabled bool
	heartbeat     time.Duration
	logger        *logging.Logger
	validator     *validator.Validate
	now           func() time.Time
}

func NewHandler(deps Dependencies, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	heartbeat := deps.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	return &Handler{
		football:      deps.Football,
		competitions:  deps.Competitions,
		predictions:   deps.Predictions,
		sagas:         deps.Sagas,
		tools:         deps.Tools,
		embeddings:    deps.Embeddings,
		workflows:     deps.Workflows,
		health:        deps.Health,
		messages:      deps.Messages,
		syncJobs:      deps.SyncJobs,
		streamEnabled: deps.StreamEnabled,
		heartbeat:     heartbeat,
		logger:        logger,
		validator:     validator.New(),
		now:           time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz runs dependency checks; an unhealthy report answers 503.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	if h.health == nil {
		writeSuccess(ctx, w, http.StatusOK, usecase.HealthReport{Status: usecase.HealthHealthy, CheckedAt: h.now().UTC()})
		return
	}

	report := h.health.Check(ctx)
	status := http.StatusOK
	if report.Status == usecase.HealthUnhealthy {
		status = http.StatusServiceUnavailable
		h.logger.WarnContext(ctx, "readiness check failed", "status", report.Status)
	}
	writeSuccess(ctx, w, status, report)
}

func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, out any) error {
	_, span := startSpan(ctx, "httpapi.Handler.decodeJSON")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func unavailable(name string) error {
	return fmt.Errorf("%w: %s is not configured", usecase.ErrDependencyUnavailable, name)
}

func queryLimit(r *http.Request, fallback, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput)
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit, nil
}

// queryTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", usecase.ErrInvalidInput, key)
	}
	return &t, nil
}
