package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryBackend_RoundTripAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMemoryBackend(NewStore(time.Minute))

	if err := backend.Set(ctx, "football:competition:PL", []byte(`{"code":"PL"}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, ok, err := backend.Get(ctx, "football:competition:PL")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(raw) != `{"code":"PL"}` {
		t.Fatalf("unexpected payload %q", raw)
	}

	raw[0] = 'x'
	again, _, _ := backend.Get(ctx, "football:competition:PL")
	if string(again) != `{"code":"PL"}` {
		t.Fatalf("expected stored payload to be isolated from caller mutation, got %q", again)
	}

	if err := backend.Delete(ctx, "football:competition:PL"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	exists, err := backend.Exists(ctx, "football:competition:PL")
	if err != nil || exists {
		t.Fatalf("expected key removed, exists=%v err=%v", exists, err)
	}
}

func TestRedisBackend_UnreachableServerReturnsError(t *testing.T) {
	t.Parallel()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	backend := NewRedisBackend(rdb, WithKeyPrefix("dml:"), WithDefaultTTL(time.Hour))
	if _, _, err := backend.Get(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
	if err := backend.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error from unreachable redis")
	}
}
