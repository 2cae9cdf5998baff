package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const (
	envelopeField        = "envelope"
	defaultStreamPrefix  = "dotmatchlens:bus"
	defaultConsumerGroup = "dotmatchlens"
	defaultReadBlock     = 5 * time.Second
	defaultReadCount     = 16
	defaultStreamMaxLen  = 10000
	pendingRescan        = 30 * time.Second
)

type RedisStreamConfig struct {
	Prefix   string
	Group    string
	Consumer string
	Block    time.Duration
	Count    int64
	MaxLen   int64
}

// RedisStreamBus publishes with XADD to one stream per topic and consumes
// through a consumer group. Entries are acknowledged only after every
// handler succeeded, so failures stay pending for redelivery.
type RedisStreamBus struct {
	*router

	rdb    redis.UniversalClient
	cfg    RedisStreamConfig
	idGen  id.Generator
	logger *logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	workers *conc.WaitGroup
	closed  bool
}

func NewRedisStreamBus(rdb redis.UniversalClient, cfg RedisStreamConfig, idGen id.Generator, logger *logging.Logger) *RedisStreamBus {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = defaultStreamPrefix
	}
	if strings.TrimSpace(cfg.Group) == "" {
		cfg.Group = defaultConsumerGroup
	}
	if strings.TrimSpace(cfg.Consumer) == "" {
		consumer, err := idGen.NewID()
		if err != nil {
			consumer = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
		}
		cfg.Consumer = consumer
	}
	if cfg.Block <= 0 {
		cfg.Block = defaultReadBlock
	}
	if cfg.Count <= 0 {
		cfg.Count = defaultReadCount
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaultStreamMaxLen
	}
	return &RedisStreamBus{
		router: newRouter(logger),
		rdb:    rdb,
		cfg:    cfg,
		idGen:  idGen,
		logger: logger,
		now:    time.Now,
	}
}

func (b *RedisStreamBus) stream(topic string) string {
	return b.cfg.Prefix + ":" + topic
}

func (b *RedisStreamBus) Publish(ctx context.Context, msg message.Message) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}

	env, err := NewEnvelope(ctx, msg, b.idGen, b.now())
	if err != nil {
		return err
	}
	raw, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	err = b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream(env.Topic),
		MaxLen: b.cfg.MaxLen,
		Approx: true,
		Values: map[string]any{envelopeField: raw},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", env.Topic, err)
	}
	return nil
}

// Start creates the consumer groups and runs one reader per subscribed topic
// until Close.
func (b *RedisStreamBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	if b.cancel != nil {
		return nil
	}

	for _, topic := range b.topics() {
		err := b.rdb.XGroupCreateMkStream(ctx, b.stream(topic), b.cfg.Group, "0").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("create consumer group for %s: %w", topic, err)
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.cancel = cancel
	b.workers = conc.NewWaitGroup()
	for _, topic := range b.topics() {
		topic := topic
		b.workers.Go(func() {
			b.consume(runCtx, topic)
		})
	}
	b.logger.Info("redis stream bus started", "group", b.cfg.Group, "consumer", b.cfg.Consumer, "topics", len(b.topics()))
	return nil
}

func (b *RedisStreamBus) consume(ctx context.Context, topic string) {
	stream := b.stream(topic)
	// "0" replays this consumer's pending entries, ">" reads new ones.
	cursor := "0"
	lastScan := b.now()
	for ctx.Err() == nil {
		if cursor == ">" && b.now().Sub(lastScan) >= pendingRescan {
			cursor = "0"
		}
		streams, err := b.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.cfg.Group,
			Consumer: b.cfg.Consumer,
			Streams:  []string{stream, cursor},
			Count:    b.cfg.Count,
			Block:    b.cfg.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			b.logger.WarnContext(ctx, "xreadgroup failed", "stream", stream, "error", err)
			sleepCtx(ctx, time.Second)
			continue
		}

		for _, s := range streams {
			for _, entry := range s.Messages {
				b.handleEntry(ctx, stream, entry)
			}
		}
		if cursor == "0" {
			cursor = ">"
			lastScan = b.now()
		}
	}
}

func (b *RedisStreamBus) handleEntry(ctx context.Context, stream string, entry redis.XMessage) {
	raw, ok := entry.Values[envelopeField].(string)
	if !ok {
		b.logger.WarnContext(ctx, "dropping stream entry without envelope", "stream", stream, "entry_id", entry.ID)
		b.ack(ctx, stream, entry.ID)
		return
	}

	if err := b.Deliver(ctx, []byte(raw)); err != nil {
		if errors.Is(err, ErrUnknownTopic) {
			b.ack(ctx, stream, entry.ID)
		}
		return
	}
	b.ack(ctx, stream, entry.ID)
}

func (b *RedisStreamBus) ack(ctx context.Context, stream, entryID string) {
	if err := b.rdb.XAck(ctx, stream, b.cfg.Group, entryID).Err(); err != nil {
		b.logger.WarnContext(ctx, "xack failed", "stream", stream, "entry_id", entryID, "error", err)
	}
}

func (b *RedisStreamBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel, workers := b.cancel, b.workers
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if workers != nil {
		workers.Wait()
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
