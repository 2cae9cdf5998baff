package gemini

import (
	"testing"

	"github.com/riskibarqy/dotmatchlens/internal/usecase"
	"google.golang.org/genai"
)

func TestToContents_MapsRoles(t *testing.T) {
	t.Parallel()

	contents := toContents([]usecase.ChatMessage{
		{Role: usecase.RoleSystem, Content: "ignored"},
		{Role: usecase.RoleUser, Content: "who won the league?"},
		{Role: usecase.RoleAssistant, ToolCalls: []usecase.ToolCall{{ID: "c1", Name: "get_competition_history", Arguments: map[string]any{"code": "PL"}}}},
		{Role: usecase.RoleTool, ToolName: "get_competition_history", ToolCallID: "c1", Content: `{"name":"Premier League"}`},
	})

	if len(contents) != 3 {
		t.Fatalf("expected system message to be dropped, got %d contents", len(contents))
	}
	if contents[0].Role != genai.RoleUser || contents[1].Role != genai.RoleModel || contents[2].Role != genai.RoleUser {
		t.Fatalf("unexpected roles %q %q %q", contents[0].Role, contents[1].Role, contents[2].Role)
	}
	call := contents[1].Parts[0].FunctionCall
	if call == nil || call.Name != "get_competition_history" || call.Args["code"] != "PL" {
		t.Fatalf("expected function call part, got %+v", contents[1].Parts[0])
	}
	resp := contents[2].Parts[0].FunctionResponse
	if resp == nil || resp.Name != "get_competition_history" || resp.ID != "c1" {
		t.Fatalf("expected function response part, got %+v", contents[2].Parts[0])
	}
}

func TestGenerateConfig(t *testing.T) {
	t.Parallel()

	cfg := generateConfig(usecase.ChatRequest{
		System: "You are a football analyst.",
		JSON:   true,
		Tools:  []usecase.ToolSpec{{Name: "get_teams", Parameters: map[string]any{"type": "object"}}},
	})
	if cfg.SystemInstruction == nil || cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Tools) != 1 || len(cfg.Tools[0].FunctionDeclarations) != 1 || cfg.Tools[0].FunctionDeclarations[0].Name != "get_teams" {
		t.Fatalf("expected one function declaration, got %+v", cfg.Tools)
	}
	if empty := generateConfig(usecase.ChatRequest{}); empty.Tools != nil || empty.SystemInstruction != nil {
		t.Fatalf("expected bare config, got %+v", empty)
	}
}
