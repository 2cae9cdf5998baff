package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const (
	defaultAgentMaxRounds = 5
	agentErrorResponse    = "Sorry, I couldn't process your query at this time."
)

const footballAgentSystemPrompt = `You are a football data assistant. Use the available tools to look up
competitions, seasons, teams and matches before answering. Prefer facts returned by tools over
your own memory, and say so when the data is missing. Answer concisely.`

var errAgentRoundsExhausted = errors.New("agent exceeded tool rounds")

// ToolExecutor runs one named tool with decoded JSON arguments.
type ToolExecutor interface {
	Specs() []ToolSpec
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

type AgentQueryResult struct {
	Query       string
	Response    string
	ToolsUsed   []string
	GeneratedAt time.Time
}

// FootballAgentService answers free-text questions with a tool-calling loop.
type FootballAgentService struct {
	llm       LanguageModel
	tools     ToolExecutor
	maxRounds int
	metrics   *WorkflowMetrics
	logger    *logging.Logger
	now       func() time.Time
}

func NewFootballAgentService(llm LanguageModel, tools ToolExecutor, maxRounds int, metrics *WorkflowMetrics, logger *logging.Logger) *FootballAgentService {
	if maxRounds <= 0 {
		maxRounds = defaultAgentMaxRounds
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FootballAgentService{
		llm:       llm,
		tools:     tools,
		maxRounds: maxRounds,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Query runs the loop. Model and tool failures never surface as errors; the
// caller always gets a response text.
func (s *FootballAgentService) Query(ctx context.Context, query, matchContext string) (AgentQueryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FootballAgentService.Query")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return AgentQueryResult{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	result := AgentQueryResult{
		Query:     query,
		ToolsUsed: []string{},
	}
	started := s.now()
	response, toolsUsed, err := s.run(ctx, query, matchContext)
	s.metrics.AgentInvoked(ctx, "query", s.now().Sub(started))
	result.ToolsUsed = append(result.ToolsUsed, toolsUsed...)
	result.GeneratedAt = s.now().UTC()
	if err != nil {
		s.logger.WarnContext(ctx, "football agent query failed", "error", err, "tools_used", len(toolsUsed))
		result.Response = agentErrorResponse
		return result, nil
	}
	result.Response = response
	return result, nil
}

func (s *FootballAgentService) run(ctx context.Context, query, matchContext string) (string, []string, error) {
	if s.llm == nil {
		return "", nil, fmt.Errorf("%w: language model not configured", ErrDependencyUnavailable)
	}

	prompt := query
	if matchContext = strings.TrimSpace(matchContext); matchContext != "" {
		prompt = matchContext + "\n\n" + query
	}

	var specs []ToolSpec
	if s.tools != nil {
		specs = s.tools.Specs()
	}
	messages := []ChatMessage{{Role: RoleUser, Content: prompt}}
	toolsUsed := make([]string, 0, 4)

	for round := 0; round < s.maxRounds; round++ {
		resp, err := s.llm.Chat(ctx, ChatRequest{
			System:   footballAgentSystemPrompt,
			Messages: messages,
			Tools:    specs,
		})
		if err != nil {
			return "", toolsUsed, fmt.Errorf("chat round %d: %w", round, err)
		}

		reply := resp.Message
		if len(reply.ToolCalls) == 0 {
			return strings.TrimSpace(reply.Content), toolsUsed, nil
		}

		reply.Role = RoleAssistant
		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			toolsUsed = append(toolsUsed, call.Name)
			messages = append(messages, ChatMessage{
				Role:       RoleTool,
				ToolName:   call.Name,
				ToolCallID: call.ID,
				Content:    s.invokeTool(ctx, call),
			})
		}
	}

	return "", toolsUsed, errAgentRoundsExhausted
}

// invokeTool renders the tool result, or its error, as JSON text for the model.
func (s *FootballAgentService) invokeTool(ctx context.Context, call ToolCall) string {
	if s.tools == nil {
		return `{"error":"tools unavailable"}`
	}

	out, err := s.tools.Execute(ctx, call.Name, call.Arguments)
	s.metrics.ToolCalled(ctx, call.Name, err == nil)
	if err != nil {
		s.logger.DebugContext(ctx, "agent tool failed", "tool", call.Name, "error", err)
		out = map[string]string{"error": err.Error()}
	}

	raw, err := sonic.MarshalString(out)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, "encode tool result: "+err.Error())
	}
	return raw
}
