package ollama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/resilience"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultEndpoint       = "http://localhost:11434"
	defaultChatModel      = "llama3.2"
	defaultEmbeddingModel = "nomic-embed-text"
	maxResponseBytes      = 8 << 20
)

var errTransient = crerr.New("ollama transient failure")

type Config struct {
	HTTPClient     *http.Client
	Endpoint       string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to a local Ollama server for chat completions and embeddings.
type Client struct {
	httpClient     *http.Client
	endpoint       string
	chatModel      string
	embeddingModel string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	embeddingModel := strings.TrimSpace(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	return &Client{
		httpClient:     httpClient,
		endpoint:       endpoint,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		logger:         logger,
		breaker:        resilience.NewNamedCircuitBreaker("ollama", cfg.CircuitBreaker),
	}
}

func (c *Client) Model() string {
	return c.chatModel
}

func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
	Format   string        `json:"format,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
}

type chatToolCall struct {
	Function chatFunctionCall `json:"function"`
}

type chatFunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Chat runs one non-streaming /api/chat round.
func (c *Client) Chat(ctx context.Context, req usecase.ChatRequest) (usecase.ChatResponse, error) {
	body := chatRequest{
		Model:    c.chatModel,
		Messages: make([]chatMessage, 0, len(req.Messages)+1),
	}
	if system := strings.TrimSpace(req.System); system != "" {
		body.Messages = append(body.Messages, chatMessage{Role: string(usecase.RoleSystem), Content: system})
	}
	for _, msg := range req.Messages {
		body.Messages = append(body.Messages, toChatMessage(msg))
	}
	for _, tool := range req.Tools {
		body.Tools = append(body.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	if req.JSON {
		body.Format = "json"
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/api/chat", body, &resp); err != nil {
		return usecase.ChatResponse{}, err
	}

	out := usecase.ChatMessage{
		Role:    usecase.RoleAssistant,
		Content: resp.Message.Content,
	}
	for i, call := range resp.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, usecase.ToolCall{
			ID:        fmt.Sprintf("call_%d", i),
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return usecase.ChatResponse{Message: out}, nil
}

func toChatMessage(msg usecase.ChatMessage) chatMessage {
	out := chatMessage{
		Role:     string(msg.Role),
		Content:  msg.Content,
		ToolName: msg.ToolName,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chatToolCall{
			Function: chatFunctionCall{Name: call.Name, Arguments: call.Arguments},
		})
	}
	return out
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed calls /api/embeddings with the configured embedding model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	if err := c.postJSON(ctx, "/api/embeddings", embeddingRequest{Model: c.embeddingModel, Prompt: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, crerr.New("ollama returned an empty embedding")
	}
	return resp.Embedding, nil
}

// Ping lists local models; readiness uses it as the reachability probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return crerr.Wrap(err, "build request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Wrap(err, "ollama unreachable")
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return crerr.Newf("ollama tags status=%d", resp.StatusCode)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "ollama circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return fmt.Errorf("%w: language model is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	err := c.do(ctx, path, payload, target)
	c.breaker.Record(err, isTransient)
	if err != nil {
		c.logger.WarnContext(ctx, "ollama request failed", "path", path, "error", err)
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, payload, target any) error {
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(raw))
	if err != nil {
		return crerr.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "send request"), errTransient)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "read response body"), errTransient)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := crerr.Newf("ollama status=%d body=%s", resp.StatusCode, abbreviate(body))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return crerr.Mark(err, errTransient)
		}
		return err
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		return crerr.Wrap(err, "decode response")
	}
	return nil
}

func isTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

func abbreviate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
