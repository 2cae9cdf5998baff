package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

func TestClient_Chat_MapsToolCalls(t *testing.T) {
	t.Parallel()

	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"model":"llama3.2","done":true,"message":{"role":"assistant","content":"",
			"tool_calls":[{"function":{"name":"get_teams","arguments":{"country":"England"}}}]}}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Logger: logging.NewNop()})
	resp, err := client.Chat(context.Background(), usecase.ChatRequest{
		System:   "be brief",
		Messages: []usecase.ChatMessage{{Role: usecase.RoleUser, Content: "teams in England?"}},
		Tools:    []usecase.ToolSpec{{Name: "get_teams", Description: "list teams", Parameters: map[string]any{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Stream {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Tools) != 1 || got.Tools[0].Type != "function" || got.Tools[0].Function.Name != "get_teams" {
		t.Fatalf("unexpected tools %+v", got.Tools)
	}
	calls := resp.Message.ToolCalls
	if len(calls) != 1 || calls[0].Name != "get_teams" || calls[0].Arguments["country"] != "England" {
		t.Fatalf("unexpected tool calls %+v", calls)
	}
}

func TestClient_Chat_JSONFormat(t *testing.T) {
	t.Parallel()

	var format string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
		format = req.Format
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"confidence\":0.5}"}}`))
	}))
	defer server.Close()

	resp, err := NewClient(Config{Endpoint: server.URL, Logger: logging.NewNop()}).Chat(context.Background(), usecase.ChatRequest{JSON: true})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if format != "json" || resp.Message.Content != `{"confidence":0.5}` {
		t.Fatalf("expected json format round trip, got format=%q content=%q", format, resp.Message.Content)
	}
}

func TestClient_Embed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	}))
	defer server.Close()

	vector, err := NewClient(Config{Endpoint: server.URL, Logger: logging.NewNop()}).Embed(context.Background(), "Arsenal")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(vector))
	}
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer healthy.Close()
	if err := NewClient(Config{Endpoint: healthy.URL}).Ping(context.Background()); err != nil {
		t.Fatalf("expected healthy ping, got %v", err)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	if err := NewClient(Config{Endpoint: broken.URL}).Ping(context.Background()); err == nil {
		t.Fatalf("expected ping failure on 500")
	}
}
