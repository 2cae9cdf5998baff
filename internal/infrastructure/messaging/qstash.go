package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

// MessagePathPrefix is where QStash delivers envelopes back into the API.
const MessagePathPrefix = "/v1/internal/messages/"

// QStashBus hands envelopes to QStash, which POSTs them to
// MessagePathPrefix+topic; the HTTP layer passes the body to Deliver.
type QStashBus struct {
	*router

	queue  usecase.JobQueue
	idGen  id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewQStashBus(queue usecase.JobQueue, idGen id.Generator, logger *logging.Logger) *QStashBus {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QStashBus{
		router: newRouter(logger),
		queue:  queue,
		idGen:  idGen,
		logger: logger,
		now:    time.Now,
	}
}

func (b *QStashBus) Publish(ctx context.Context, msg message.Message) error {
	env, err := NewEnvelope(ctx, msg, b.idGen, b.now())
	if err != nil {
		return err
	}
	// The envelope id doubles as QStash's deduplication id.
	if err := b.queue.Enqueue(ctx, MessagePathPrefix+env.Topic, env, 0, env.ID); err != nil {
		return fmt.Errorf("enqueue %s: %w", env.Topic, err)
	}
	return nil
}

func (b *QStashBus) Start(context.Context) error {
	return nil
}

func (b *QStashBus) Close() error {
	return nil
}
