package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", " /HEALTHZ "} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for probe path %q", path)
		}
	}
	for _, path := range []string{"/v1/football/teams", "/v1/workflows/active", "/", "/docs"} {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

func TestRequestLoggingRecordsRouteAndSize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/football/teams/{teamID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("arsenal"))
	})
	handler := RequestLogging(logging.NewJSONWriter(logging.LevelInfo, &buf), mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/football/teams/abc", nil))

	line := buf.String()
	for _, want := range []string{`"status":418`, `"bytes":7`, `"route":"GET /v1/football/teams/{teamID}"`, `"path":"/v1/football/teams/abc"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in log line %s", want, line)
		}
	}
}
