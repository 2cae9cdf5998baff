package gemini

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/resilience"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
	"google.golang.org/genai"
)

const (
	defaultChatModel      = "gemini-2.5-flash"
	defaultEmbeddingModel = "gemini-embedding-001"
	defaultDimensions     = 768
)

type Config struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Dimensions     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client adapts the Gemini API to the chat and embedding ports.
type Client struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	dimensions     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, crerr.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, crerr.Wrap(err, "create genai client")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	embeddingModel := strings.TrimSpace(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = defaultDimensions
	}

	return &Client{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		dimensions:     dims,
		logger:         logger,
		breaker:        resilience.NewNamedCircuitBreaker("gemini", cfg.CircuitBreaker),
	}, nil
}

func (c *Client) Model() string {
	return c.chatModel
}

func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Chat sends the conversation through GenerateContent with tools as function declarations.
func (c *Client) Chat(ctx context.Context, req usecase.ChatRequest) (usecase.ChatResponse, error) {
	if err := c.breaker.Allow(); err != nil {
		return usecase.ChatResponse{}, fmt.Errorf("%w: language model is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, toContents(req.Messages), generateConfig(req))
	c.breaker.Record(err, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "gemini generate content failed", "model", c.chatModel, "error", err)
		return usecase.ChatResponse{}, crerr.Wrap(err, "gemini generate content")
	}

	out := usecase.ChatMessage{Role: usecase.RoleAssistant}
	for i, call := range resp.FunctionCalls() {
		id := call.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		out.ToolCalls = append(out.ToolCalls, usecase.ToolCall{ID: id, Name: call.Name, Arguments: call.Args})
	}
	if len(out.ToolCalls) == 0 {
		out.Content = resp.Text()
	}
	return usecase.ChatResponse{Message: out}, nil
}

func generateConfig(req usecase.ChatRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if system := strings.TrimSpace(req.System); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 tool.Name,
				Description:          tool.Description,
				ParametersJsonSchema: tool.Parameters,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return cfg
}

// toContents maps chat history onto Gemini roles: assistant turns become
// "model", tool results become function responses sent as "user".
func toContents(messages []usecase.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case usecase.RoleAssistant:
			parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: call.ID, Name: call.Name, Args: call.Arguments}})
			}
			out = append(out, genai.NewContentFromParts(parts, genai.RoleModel))
		case usecase.RoleTool:
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       msg.ToolCallID,
				Name:     msg.ToolName,
				Response: map[string]any{"output": msg.Content},
			}}
			out = append(out, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		case usecase.RoleSystem:
			// carried by SystemInstruction
		default:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return out
}

// Embed returns the first embedding for text using the configured model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := int32(c.dimensions)
	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{
			TaskType:             "SEMANTIC_SIMILARITY",
			OutputDimensionality: &dims,
		},
	)
	if err != nil {
		return nil, crerr.Wrap(err, "gemini embed content")
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, crerr.New("gemini returned no embeddings")
	}
	return result.Embeddings[0].Values, nil
}

func (c *Client) Dimensions() int {
	return c.dimensions
}

func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}
