package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"go.opentelemetry.io/otel/propagation"
)

var (
	ErrBusClosed     = errors.New("message bus is closed")
	ErrUnknownTopic  = errors.New("unknown message topic")
	ErrNoSubscribers = errors.New("no subscribers for topic")
)

// Handler consumes one delivered message. A returned error means the
// message was not processed; durable transports deliver it again.
type Handler func(ctx context.Context, msg message.Message) error

// Bus moves contracts between producers and handlers.
type Bus interface {
	Publish(ctx context.Context, msg message.Message) error
	Subscribe(topic string, handler Handler) error
	Start(ctx context.Context) error
	Close() error
}

// Envelope is the wire form of a published message.
type Envelope struct {
	ID            string            `json:"id"`
	Topic         string            `json:"topic"`
	CorrelationID string            `json:"correlation_id"`
	PublishedAt   time.Time         `json:"published_at"`
	TraceCarrier  map[string]string `json:"trace_carrier,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
}

var propagator = propagation.TraceContext{}

// NewEnvelope encodes msg with the trace context of ctx.
func NewEnvelope(ctx context.Context, msg message.Message, idGen id.Generator, now time.Time) (Envelope, error) {
	if msg == nil {
		return Envelope{}, fmt.Errorf("message is required")
	}
	payload, err := sonic.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", msg.Topic(), err)
	}
	envelopeID, err := idGen.NewID()
	if err != nil {
		return Envelope{}, fmt.Errorf("generate envelope id: %w", err)
	}

	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)

	return Envelope{
		ID:            envelopeID,
		Topic:         msg.Topic(),
		CorrelationID: msg.Correlation(),
		PublishedAt:   now.UTC(),
		TraceCarrier:  carrier,
		Payload:       payload,
	}, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	return sonic.Marshal(e)
}

func UnmarshalEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Topic == "" {
		return Envelope{}, fmt.Errorf("decode envelope: topic is empty")
	}
	return env, nil
}

// Decode restores the contract and returns ctx carrying the publisher's trace.
func (e Envelope) Decode(ctx context.Context) (context.Context, message.Message, error) {
	msg, ok := message.New(e.Topic)
	if !ok {
		return ctx, nil, fmt.Errorf("%w: %s", ErrUnknownTopic, e.Topic)
	}
	if err := sonic.Unmarshal(e.Payload, msg); err != nil {
		return ctx, nil, fmt.Errorf("decode %s payload: %w", e.Topic, err)
	}
	if len(e.TraceCarrier) > 0 {
		ctx = propagator.Extract(ctx, propagation.MapCarrier(e.TraceCarrier))
	}
	return ctx, msg, nil
}

// router keeps the topic subscriptions shared by every transport.
type router struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *logging.Logger
}

func newRouter(logger *logging.Logger) *router {
	if logger == nil {
		logger = logging.Default()
	}
	return &router{handlers: make(map[string][]Handler), logger: logger}
}

func (r *router) Subscribe(topic string, handler Handler) error {
	if _, ok := message.New(topic); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	if handler == nil {
		return fmt.Errorf("handler is required for %s", topic)
	}
	r.mu.Lock()
	r.handlers[topic] = append(r.handlers[topic], handler)
	r.mu.Unlock()
	return nil
}

func (r *router) subscribers(topic string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Handler(nil), r.handlers[topic]...)
}

func (r *router) topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		out = append(out, topic)
	}
	return out
}

// Deliver decodes raw as an envelope and runs every handler for its topic in
// order. The first handler error is returned after all handlers ran.
func (r *router) Deliver(ctx context.Context, raw []byte) error {
	env, err := UnmarshalEnvelope(raw)
	if err != nil {
		return err
	}
	return r.deliverEnvelope(ctx, env)
}

func (r *router) deliverEnvelope(ctx context.Context, env Envelope) error {
	ctx, msg, err := env.Decode(ctx)
	if err != nil {
		return err
	}
	handlers := r.subscribers(env.Topic)
	if len(handlers) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubscribers, env.Topic)
	}

	var firstErr error
	for _, handler := range handlers {
		if err := r.invoke(ctx, handler, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *router) invoke(ctx context.Context, handler Handler, msg message.Message) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic on %s: %v", msg.Topic(), rec)
		}
		if err != nil {
			r.logger.ErrorContext(ctx, "message handler failed",
				"topic", msg.Topic(),
				"correlation_id", msg.Correlation(),
				"error", err,
			)
		}
	}()
	return handler(ctx, msg)
}
