package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/goleak"
)

func TestEnvelope_RoundTripCarriesTrace(t *testing.T) {
	t.Parallel()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	published := message.MatchPredictionRequested{MatchID: "m1", CorrelationID: "c1", AdditionalContext: "derby"}
	env, err := NewEnvelope(ctx, published, id.NewUUIDGenerator(), time.Now())
	if err != nil {
		t.Fatalf("new envelope: %v", err)
	}
	raw, err := env.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decodedEnv, err := UnmarshalEnvelope(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	gotCtx, msg, err := decodedEnv.Decode(context.Background())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, ok := msg.(*message.MatchPredictionRequested)
	if !ok || *got != published {
		t.Fatalf("expected %+v, got %#v", published, msg)
	}
	if decodedEnv.CorrelationID != "c1" || decodedEnv.Topic != message.TopicMatchPredictionRequested {
		t.Fatalf("unexpected envelope header %+v", decodedEnv)
	}
	if sc := trace.SpanContextFromContext(gotCtx); sc.TraceID() != traceID {
		t.Fatalf("expected trace %s to propagate, got %s", traceID, sc.TraceID())
	}
}

func TestRouter_DeliverErrors(t *testing.T) {
	t.Parallel()

	r := newRouter(logging.NewNop())
	if err := r.Subscribe("unknown.topic", func(context.Context, message.Message) error { return nil }); !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("expected ErrUnknownTopic, got %v", err)
	}

	env, _ := NewEnvelope(context.Background(), message.TeamDataIngested{TeamID: "t1"}, id.NewUUIDGenerator(), time.Now())
	raw, _ := env.Marshal()
	if err := r.Deliver(context.Background(), raw); !errors.Is(err, ErrNoSubscribers) {
		t.Fatalf("expected ErrNoSubscribers, got %v", err)
	}

	_ = r.Subscribe(message.TopicTeamDataIngested, func(context.Context, message.Message) error { panic("boom") })
	if err := r.Deliver(context.Background(), raw); err == nil {
		t.Fatalf("expected handler panic to surface as error")
	}
	if err := r.Deliver(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestMemoryBus_DeliversToEverySubscriber(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bus, err := NewMemoryBus(4, logging.NewNop())
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}

	var (
		mu       sync.Mutex
		received []string
	)
	for _, name := range []string{"saga", "audit"} {
		name := name
		if err := bus.Subscribe(message.TopicMatchPredictionCompleted, func(_ context.Context, msg message.Message) error {
			mu.Lock()
			received = append(received, name+":"+msg.Correlation())
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	if err := bus.Publish(context.Background(), message.MatchPredictionCompleted{CorrelationID: "c1", Success: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(received) != 2 {
		t.Fatalf("expected both subscribers to run before close returned, got %v", received)
	}
	if err := bus.Publish(context.Background(), message.MatchPredictionCompleted{CorrelationID: "c2"}); !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed after close, got %v", err)
	}
}

func TestMemoryBus_CloseDrainsFollowUpMessages(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bus, err := NewMemoryBus(1, logging.NewNop())
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}

	completed := make(chan string, 1)
	_ = bus.Subscribe(message.TopicMatchPredictionRequested, func(ctx context.Context, msg message.Message) error {
		time.Sleep(20 * time.Millisecond)
		return bus.Publish(ctx, message.MatchPredictionCompleted{CorrelationID: msg.Correlation(), Success: true})
	})
	_ = bus.Subscribe(message.TopicMatchPredictionCompleted, func(_ context.Context, msg message.Message) error {
		completed <- msg.Correlation()
		return nil
	})

	if err := bus.Publish(context.Background(), message.MatchPredictionRequested{CorrelationID: "c1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case got := <-completed:
		if got != "c1" {
			t.Fatalf("expected completion for c1, got %s", got)
		}
	default:
		t.Fatalf("expected follow-up completion to be delivered before close returned")
	}
}

type recordingQueue struct {
	path    string
	payload any
	dedupID string
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, payload any, _ time.Duration, dedupID string) error {
	q.path, q.payload, q.dedupID = path, payload, dedupID
	return nil
}

func TestQStashBus_PublishesEnvelopeAndDeliversBack(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	bus := NewQStashBus(queue, nil, logging.NewNop())

	var got message.Message
	_ = bus.Subscribe(message.TopicCompetitionSyncRequested, func(_ context.Context, msg message.Message) error {
		got = msg
		return nil
	})

	if err := bus.Publish(context.Background(), message.CompetitionSyncRequested{CompetitionCode: "PL", CorrelationID: "c1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if queue.path != MessagePathPrefix+message.TopicCompetitionSyncRequested {
		t.Fatalf("unexpected callback path %s", queue.path)
	}
	env, ok := queue.payload.(Envelope)
	if !ok || env.ID == "" || queue.dedupID != env.ID {
		t.Fatalf("expected envelope payload deduplicated by its id, got %#v dedup=%s", queue.payload, queue.dedupID)
	}

	raw, _ := env.Marshal()
	if err := bus.Deliver(context.Background(), raw); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	req, ok := got.(*message.CompetitionSyncRequested)
	if !ok || req.CompetitionCode != "PL" {
		t.Fatalf("unexpected delivered message %#v", got)
	}
}
