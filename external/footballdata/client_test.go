package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

const premierLeagueJSON = `{
  "id": 2021,
  "name": "Premier League",
  "code": "PL",
  "type": "LEAGUE",
  "emblem": "https://crests.football-data.org/PL.png",
  "area": {"id": 2072, "name": "England", "code": "ENG", "flag": "https://crests.football-data.org/770.svg"},
  "seasons": [
    {"id": 2287, "startDate": "2024-08-16", "endDate": "2025-05-25", "currentMatchday": 38,
     "winner": {"id": 64, "name": "Liverpool FC"}},
    {"id": 2403, "startDate": "2025-08-15", "endDate": "2026-05-24", "currentMatchday": 9, "winner": null}
  ]
}`

func newTestClient(baseURL string, retries int) *Client {
	return NewClient(ClientConfig{
		BaseURL:            baseURL,
		Token:              "secret-token",
		MaxRetries:         retries,
		RetryBackoff:       time.Millisecond,
		RateLimitPerMinute: 60000,
		Logger:             logging.NewNop(),
	})
}

func TestClient_GetCompetition_ParsesPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions/PL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Auth-Token"); got != "secret-token" {
			t.Errorf("expected auth token header, got %q", got)
		}
		_, _ = w.Write([]byte(premierLeagueJSON))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL, 0).GetCompetition(context.Background(), " pl ")
	if err != nil {
		t.Fatalf("get competition: %v", err)
	}
	if got.ID != 2021 || got.Code != "PL" || got.Area.Name != "England" {
		t.Fatalf("unexpected competition %+v", got)
	}
	if len(got.Seasons) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(got.Seasons))
	}
	first := got.Seasons[0]
	if first.Winner == nil || first.Winner.Name != "Liverpool FC" || first.CurrentMatchday == nil || *first.CurrentMatchday != 38 {
		t.Fatalf("unexpected first season %+v", first)
	}
	if got.Seasons[1].Winner != nil {
		t.Fatalf("expected open season without winner")
	}
	if len(first.RawJSON) == 0 || len(got.RawJSON) == 0 {
		t.Fatalf("expected raw payloads to be kept")
	}
}

func TestClient_GetCompetition_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: usecase.ErrNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, want: usecase.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: usecase.ErrUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, 2).GetCompetition(context.Background(), "XX")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if calls.Load() != 1 {
				t.Fatalf("expected no retries, got %d calls", calls.Load())
			}
		})
	}
}

func TestClient_GetCompetition_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(premierLeagueJSON))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL, 1).GetCompetition(context.Background(), "PL")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got.Name != "Premier League" || calls.Load() != 2 {
		t.Fatalf("expected 2 calls and parsed payload, got calls=%d name=%q", calls.Load(), got.Name)
	}
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:            server.URL,
		RateLimitPerMinute: 60000,
		Logger:             logging.NewNop(),
		CircuitBreaker:     resilienceConfig(1),
	})

	if _, err := client.GetCompetition(context.Background(), "PL"); err == nil {
		t.Fatalf("expected first call to fail")
	}
	_, err := client.GetCompetition(context.Background(), "PL")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected breaker to short-circuit, got %d calls", calls.Load())
	}
}
