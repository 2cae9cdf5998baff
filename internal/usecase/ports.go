package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
)

// Publisher sends a contract onto the message bus.
type Publisher interface {
	Publish(ctx context.Context, msg message.Message) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, message.Message) error {
	return nil
}

// NewNoopPublisher drops every message. Used when no bus is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

// EmbeddingGenerator turns text into a fixed-size vector.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleTool      ChatRole = "tool"
)

type ChatMessage struct {
	Role       ChatRole
	Content    string
	ToolCalls  []ToolCall
	ToolName   string
	ToolCallID string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolSpec advertises a callable tool; Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ChatRequest struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolSpec
	// JSON asks the model to answer with a single JSON object.
	JSON bool
}

type ChatResponse struct {
	Message ChatMessage
}

// LanguageModel is a chat-completion backend with optional tool calling.
type LanguageModel interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Model() string
}

// CompetitionSource fetches a competition with its seasons from the football-data provider.
type CompetitionSource interface {
	GetCompetition(ctx context.Context, code string) (ExternalCompetition, error)
}

type ExternalCompetition struct {
	ID      int64
	Name    string
	Code    string
	Type    string
	Emblem  string
	Area    ExternalArea
	Seasons []ExternalSeason
	RawJSON []byte
}

type ExternalArea struct {
	Name string
	Code string
	Flag string
}

type ExternalSeason struct {
	ID              int64
	StartDate       string
	EndDate         string
	CurrentMatchday *int
	Winner          *ExternalWinner
	Stages          []string
	RawJSON         []byte
}

type ExternalWinner struct {
	ID   int64
	Name string
}

// JobQueue schedules a delayed HTTP callback into this service.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}
