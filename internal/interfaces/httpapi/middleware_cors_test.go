package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const webOrigin = "https://lens.example.com"

func corsRecorder(origins []string, method, path, origin string) (*httptest.ResponseRecorder, bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	CORS(origins, next).ServeHTTP(rec, req)
	return rec, reached
}

func TestCORS_OriginHeaders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		origins    []string
		origin     string
		wantOrigin string
		wantVary   bool
	}{
		{name: "listed origin is echoed", origins: []string{" " + webOrigin + " ", ""}, origin: webOrigin, wantOrigin: webOrigin, wantVary: true},
		{name: "wildcard", origins: []string{"*"}, origin: webOrigin, wantOrigin: "*"},
		{name: "unlisted origin", origins: []string{"https://admin.example.com"}, origin: webOrigin},
		{name: "no origin header", origins: []string{"*"}},
	}
	for _, tc := range cases {
		rec, reached := corsRecorder(tc.origins, http.MethodGet, "/v1/predictions/match/m-1", tc.origin)
		if !reached || rec.Code != http.StatusTeapot {
			t.Fatalf("%s: GET should reach the handler, got status %d", tc.name, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
			t.Fatalf("%s: allow-origin = %q, want %q", tc.name, got, tc.wantOrigin)
		}
		if got := rec.Header().Get("Vary") == "Origin"; got != tc.wantVary {
			t.Fatalf("%s: vary origin = %v, want %v", tc.name, got, tc.wantVary)
		}
	}
}

func TestCORS_PreflightStopsBeforeHandler(t *testing.T) {
	t.Parallel()

	rec, reached := corsRecorder([]string{webOrigin}, http.MethodOptions, "/v1/predictions/workflow/match/m-1", webOrigin)
	if reached {
		t.Fatalf("preflight must not reach the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Fatalf("allow-methods %q should include POST", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("max-age = %q", got)
	}
}

func TestCORS_StreamReconnectHeaderAllowed(t *testing.T) {
	t.Parallel()

	rec, _ := corsRecorder([]string{"*"}, http.MethodOptions, "/v1/workflows/events/abc/stream", webOrigin)
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Last-Event-ID") {
		t.Fatalf("expected Last-Event-ID in allowed headers, got %q", got)
	}
}
