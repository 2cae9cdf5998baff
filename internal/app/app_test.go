package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/dotmatchlens/internal/config"
	"github.com/riskibarqy/dotmatchlens/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const fakePrediction = `{"homeWinProbability":0.5,"drawProbability":0.3,"awayWinProbability":0.2,` +
	`"predictedHomeScore":2,"predictedAwayScore":1,"confidence":0.7,"reasoning":"home form"}`

func newFakeOllama(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/chat":
			body, _ := sonic.Marshal(map[string]any{
				"model":   "fake-llm",
				"message": map[string]any{"role": "assistant", "content": fakePrediction},
				"done":    true,
			})
			_, _ = w.Write(body)
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func memoryConfig(ollamaURL string) config.Config {
	return config.Config{
		AppEnv:                  config.EnvDev,
		ServiceName:             "dotmatchlens-api-test",
		ServiceVersion:          "test",
		HTTPAddr:                "127.0.0.1:0",
		ReadTimeout:             5 * time.Second,
		WriteTimeout:            5 * time.Second,
		ShutdownTimeout:         time.Second,
		CORSAllowedOrigins:      []string{"*"},
		InternalJobToken:        "job-secret",
		SeedDemoData:            true,
		CacheEnabled:            true,
		CacheDriver:             config.CacheDriverMemory,
		CacheTTL:                time.Minute,
		FootballDataCacheTTL:    time.Hour,
		FootballDataBaseURL:     "http://127.0.0.1:1",
		FootballDataTimeout:     time.Second,
		CompetitionSyncInterval: time.Hour,
		LLMProvider:             config.LLMProviderOllama,
		LLMTimeout:              5 * time.Second,
		AgentMaxRounds:          3,
		OllamaEndpoint:          ollamaURL,
		OllamaChatModel:         "fake-llm",
		EmbeddingProvider:       config.EmbeddingProviderHash,
		EmbeddingDimensions:     768,
		BusDriver:               config.BusDriverMemory,
		BusWorkers:              4,
		SagaStore:               config.SagaStoreMemory,
		WorkflowSSEEnabled:      true,
		WorkflowMaxEvents:       1000,
		WorkflowHeartbeat:       time.Second,
		HealthCheckTimeout:      time.Second,
	}
}

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()

	ollama := newFakeOllama(t)
	a, err := New(context.Background(), memoryConfig(ollama.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.Close)
	if err := a.bus.Start(context.Background()); err != nil {
		t.Fatalf("start bus: %v", err)
	}

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, srv
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON[T any](t *testing.T, method, url, body string) (int, envelope[T]) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out envelope[T]
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return resp.StatusCode, out
}

func TestPredictionSagaCompletesInMemoryMode(t *testing.T) {
	t.Parallel()

	_, srv := newTestApp(t)

	status, accepted := doJSON[struct {
		CorrelationID string `json:"correlationId"`
	}](t, http.MethodPost, srv.URL+"/v1/predictions/workflow/match/"+memory.MatchIDNorthLondon, "")
	if status != http.StatusAccepted || accepted.Data.CorrelationID == "" {
		t.Fatalf("unexpected accept response: status=%d body=%+v", status, accepted)
	}

	type sagaView struct {
		CurrentState string `json:"currentState"`
		PredictionID string `json:"predictionId"`
	}
	deadline := time.Now().Add(5 * time.Second)
	var last sagaView
	for time.Now().Before(deadline) {
		_, res := doJSON[sagaView](t, http.MethodGet, srv.URL+"/v1/predictions/workflow/"+accepted.Data.CorrelationID, "")
		last = res.Data
		if last.CurrentState == "Completed" || last.CurrentState == "Failed" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if last.CurrentState != "Completed" || last.PredictionID == "" {
		t.Fatalf("expected completed saga with prediction, got %+v", last)
	}

	_, preds := doJSON[[]map[string]any](t, http.MethodGet, srv.URL+"/v1/predictions/match/"+memory.MatchIDNorthLondon, "")
	if len(preds.Data) == 0 {
		t.Fatalf("expected stored prediction for match")
	}
}

func TestReadinessReportsDependencies(t *testing.T) {
	t.Parallel()

	_, srv := newTestApp(t)

	status, report := doJSON[struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}](t, http.MethodGet, srv.URL+"/readyz", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if report.Data.Status != "healthy" {
		t.Fatalf("expected healthy report, got %+v", report.Data)
	}
	names := map[string]bool{}
	for _, check := range report.Data.Checks {
		names[check.Name] = true
	}
	if !names["llm"] || !names["football_data"] {
		t.Fatalf("expected llm and football_data checks, got %v", names)
	}
}

func TestNewRejectsRedisDriverWithoutURL(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig("http://127.0.0.1:1")
	cfg.BusDriver = config.BusDriverRedis
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error when redis driver has no REDIS_URL")
	}
}

func TestOpenToolsetServesSeededTeams(t *testing.T) {
	t.Parallel()

	ts, err := OpenToolset(context.Background(), memoryConfig("http://127.0.0.1:1"), logging.NewNop())
	if err != nil {
		t.Fatalf("open toolset: %v", err)
	}
	defer ts.Close()

	if len(ts.Tools.Specs()) == 0 {
		t.Fatalf("expected tool specs")
	}
}
