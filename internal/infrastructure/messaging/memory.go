package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const (
	defaultMemoryWorkers = 16
	poolReleaseTimeout   = 5 * time.Second
)

type deliveryKey struct{}

// MemoryBus delivers in-process on an ants worker pool. Each handler of a
// topic runs as its own task; nothing survives a restart.
type MemoryBus struct {
	*router

	pool     *ants.Pool
	inflight sync.WaitGroup
	mu       sync.RWMutex
	closing  bool
	closed   bool
	logger   *logging.Logger
}

func NewMemoryBus(workers int, logger *logging.Logger) (*MemoryBus, error) {
	if workers <= 0 {
		workers = defaultMemoryWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create bus worker pool: %w", err)
	}
	return &MemoryBus{
		router: newRouter(logger),
		pool:   pool,
		logger: logger,
	}, nil
}

func (b *MemoryBus) Start(context.Context) error {
	return nil
}

// Publish schedules every handler of msg's topic and returns without waiting.
// Topics without subscribers are dropped.
func (b *MemoryBus) Publish(ctx context.Context, msg message.Message) error {
	if msg == nil {
		return fmt.Errorf("message is required")
	}

	b.mu.RLock()
	// While closing, only handlers still running may publish follow-ups.
	if b.closed || (b.closing && ctx.Value(deliveryKey{}) == nil) {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := b.subscribers(msg.Topic())
	b.inflight.Add(len(handlers))
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.DebugContext(ctx, "no subscribers for message", "topic", msg.Topic())
		return nil
	}

	// Deliveries outlive the publisher's request but keep its trace.
	deliveryCtx := context.WithValue(context.WithoutCancel(ctx), deliveryKey{}, struct{}{})
	nested := ctx.Value(deliveryKey{}) != nil
	for i, handler := range handlers {
		handler := handler
		task := func() {
			defer b.inflight.Done()
			_ = b.invoke(deliveryCtx, handler, msg)
		}
		if nested {
			// A handler blocking on a full pool could starve the pool.
			go b.submitDetached(deliveryCtx, msg.Topic(), task)
			continue
		}
		if err := b.pool.Submit(task); err != nil {
			b.inflight.Add(i - len(handlers))
			return fmt.Errorf("submit %s delivery: %w", msg.Topic(), err)
		}
	}
	return nil
}

func (b *MemoryBus) submitDetached(ctx context.Context, topic string, task func()) {
	if err := b.pool.Submit(task); err != nil {
		b.inflight.Done()
		b.logger.ErrorContext(ctx, "submit delivery failed", "topic", topic, "error", err)
	}
}

// Close rejects new publishes and waits for in-flight deliveries, including
// the follow-up messages they publish.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closing || b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closing = true
	b.mu.Unlock()

	b.inflight.Wait()

	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	if err := b.pool.ReleaseTimeout(poolReleaseTimeout); err != nil {
		return fmt.Errorf("release bus worker pool: %w", err)
	}
	return nil
}

// Wait blocks until every scheduled delivery has finished.
func (b *MemoryBus) Wait() {
	b.inflight.Wait()
}
