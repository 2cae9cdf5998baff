package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []message.Message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, msg message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Published() []message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]message.Message(nil), p.messages...)
}

type sequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next), nil
}

type staticEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *staticEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func (e *staticEmbedder) Dimensions() int { return len(e.vector) }
func (e *staticEmbedder) Name() string    { return "static" }

// scriptedModel answers each Chat call with the next scripted response.
type scriptedModel struct {
	mu        sync.Mutex
	responses []ChatResponse
	errs      []error
	requests  []ChatRequest
}

func (m *scriptedModel) Chat(_ context.Context, req ChatRequest) (ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.requests)
	m.requests = append(m.requests, req)
	if idx < len(m.errs) && m.errs[idx] != nil {
		return ChatResponse{}, m.errs[idx]
	}
	if idx >= len(m.responses) {
		return ChatResponse{}, errors.New("script exhausted")
	}
	return m.responses[idx], nil
}

func (m *scriptedModel) Model() string { return "test-model" }

type stubTools struct {
	calls []string
	out   map[string]any
	err   error
}

func (s *stubTools) Specs() []ToolSpec {
	return []ToolSpec{{Name: ToolGetTeams, Description: "list teams"}}
}

func (s *stubTools) Execute(_ context.Context, name string, _ map[string]any) (any, error) {
	s.calls = append(s.calls, name)
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func ctxMatcher(ctx context.Context) func(context.Context) bool {
	return func(v context.Context) bool { return v == ctx }
}
