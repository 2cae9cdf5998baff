package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFootballAgentService_RunsToolsUntilAnswer(t *testing.T) {
	t.Parallel()

	llm := &scriptedModel{responses: []ChatResponse{
		{Message: ChatMessage{ToolCalls: []ToolCall{{ID: "c1", Name: ToolGetTeams, Arguments: map[string]any{"country": "England"}}}}},
		{Message: ChatMessage{Content: " Arsenal and Chelsea. "}},
	}}
	tools := &stubTools{out: map[string]any{"teams": []string{"Arsenal", "Chelsea"}}}
	svc := NewFootballAgentService(llm, tools, 0, nil, nil)

	got, err := svc.Query(context.Background(), "Which English teams exist?", "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got.Response != "Arsenal and Chelsea." {
		t.Fatalf("unexpected response %q", got.Response)
	}
	if len(got.ToolsUsed) != 1 || got.ToolsUsed[0] != ToolGetTeams {
		t.Fatalf("unexpected tools used: %v", got.ToolsUsed)
	}

	second := llm.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != RoleTool || last.ToolCallID != "c1" || !strings.Contains(last.Content, "Arsenal") {
		t.Fatalf("tool result must be fed back to the model, got %+v", last)
	}
}

func TestFootballAgentService_ToolErrorsAreReportedToModel(t *testing.T) {
	t.Parallel()

	llm := &scriptedModel{responses: []ChatResponse{
		{Message: ChatMessage{ToolCalls: []ToolCall{{ID: "c1", Name: ToolGetTeams}}}},
		{Message: ChatMessage{Content: "No data."}},
	}}
	tools := &stubTools{err: errors.New("db down")}
	svc := NewFootballAgentService(llm, tools, 3, nil, nil)

	if _, err := svc.Query(context.Background(), "teams?", ""); err != nil {
		t.Fatalf("query: %v", err)
	}
	last := llm.requests[1].Messages[len(llm.requests[1].Messages)-1]
	if !strings.Contains(last.Content, "db down") {
		t.Fatalf("expected tool error in tool message, got %q", last.Content)
	}
}

func TestFootballAgentService_ModelErrorYieldsApology(t *testing.T) {
	t.Parallel()

	llm := &scriptedModel{errs: []error{errors.New("timeout")}}
	svc := NewFootballAgentService(llm, nil, 0, nil, nil)

	got, err := svc.Query(context.Background(), "who won?", "Match: A vs B on 2026-01-01")
	if err != nil {
		t.Fatalf("query must not fail: %v", err)
	}
	if got.Response != agentErrorResponse {
		t.Fatalf("expected apology, got %q", got.Response)
	}
	if !strings.HasPrefix(llm.requests[0].Messages[0].Content, "Match: A vs B") {
		t.Fatalf("match context must prefix the prompt")
	}
}

func TestFootballAgentService_StopsAfterMaxRounds(t *testing.T) {
	t.Parallel()

	loop := ChatResponse{Message: ChatMessage{ToolCalls: []ToolCall{{ID: "c", Name: ToolGetTeams}}}}
	llm := &scriptedModel{responses: []ChatResponse{loop, loop, loop}}
	svc := NewFootballAgentService(llm, &stubTools{}, 2, nil, nil)

	got, err := svc.Query(context.Background(), "loop forever", "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got.Response != agentErrorResponse {
		t.Fatalf("expected apology after exhausting rounds, got %q", got.Response)
	}
	if len(llm.requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(llm.requests))
	}
}

func TestFootballAgentService_RejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	svc := NewFootballAgentService(&scriptedModel{}, nil, 0, nil, nil)
	if _, err := svc.Query(context.Background(), "  ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
