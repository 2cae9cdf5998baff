package cache

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

// Expired entries are only dropped when read; every sweepEvery writes the
// whole map is swept so keys that are never read again do not pile up.
const sweepEvery = 256

var (
	hitAttrs  = metric.WithAttributes(attribute.Bool("hit", true))
	missAttrs = metric.WithAttributes(attribute.Bool("hit", false))
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// Store is an in-process TTL cache. A zero TTL keeps entries until deleted.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  singleflight.Group
	now     func() time.Time

	writes  atomic.Uint64
	hits    atomic.Uint64
	misses  atomic.Uint64
	lookups metric.Int64Counter
}

// Stats is a point-in-time snapshot of a Store.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

func NewStore(ttl time.Duration) *Store {
	lookups, _ := otel.Meter("github.com/riskibarqy/dotmatchlens/internal/platform/cache").
		Int64Counter("dotmatchlens.cache.lookups", metric.WithDescription("Read-through cache lookups by outcome."))
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		lookups: lookups,
	}
}

func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok && e.expired(s.now()) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		ok = false
	}

	s.record(ctx, ok)
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (s *Store) record(ctx context.Context, hit bool) {
	if hit {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	if s.lookups == nil {
		return
	}
	if hit {
		s.lookups.Add(ctx, 1, hitAttrs)
	} else {
		s.lookups.Add(ctx, 1, missAttrs)
	}
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *Store) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	now := s.now()
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	if s.writes.Add(1)%sweepEvery == 0 {
		for k, v := range s.entries {
			if v.expired(now) {
				delete(s.entries, k)
			}
		}
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, keys ...string) {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

// DeletePrefix drops every key under prefix, e.g. all cached list pages.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return Stats{Entries: n, Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// GetOrLoad returns the cached value for key or runs loader once for all
// concurrent callers. Loader errors are returned and never cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, errors.New("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		if ok && !e.expired(s.now()) {
			return e.value, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	return value, err
}

// Load is the typed form of GetOrLoad.
func Load[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	v, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) { return loader(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

// LoadSlice caches a copy of the loaded slice and hands every caller its own
// copy, so callers may mutate what they get back.
func LoadSlice[T any](ctx context.Context, s *Store, key string, loader func(context.Context) ([]T, error)) ([]T, error) {
	items, err := Load(ctx, s, key, func(ctx context.Context) ([]T, error) {
		items, err := loader(ctx)
		return slices.Clone(items), err
	})
	return slices.Clone(items), err
}

type lookup[T any] struct {
	value T
	found bool
}

// LoadLookup caches (value, found) pairs so a miss is remembered as well as
// a hit.
func LoadLookup[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, bool, error)) (T, bool, error) {
	got, err := Load(ctx, s, key, func(ctx context.Context) (lookup[T], error) {
		value, found, err := loader(ctx)
		return lookup[T]{value: value, found: found}, err
	})
	return got.value, got.found, err
}
