package cache

import (
	"context"
	"time"
)

// Backend stores encoded payloads. Implementations may be remote, so every
// call can fail; callers decide whether a failure degrades to a miss.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

// MemoryBackend adapts a Store to the Backend interface.
type MemoryBackend struct {
	store *Store
}

func NewMemoryBackend(store *Store) *MemoryBackend {
	if store == nil {
		store = NewStore(0)
	}
	return &MemoryBackend{store: store}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := b.store.Get(ctx, key)
	if !ok {
		return nil, false, nil
	}
	raw, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.store.SetWithTTL(ctx, key, append([]byte(nil), value...), ttl)
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, keys ...string) error {
	b.store.Delete(ctx, keys...)
	return nil
}

func (b *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := b.store.Get(ctx, key)
	return ok, nil
}

func (b *MemoryBackend) Ping(context.Context) error {
	return nil
}
