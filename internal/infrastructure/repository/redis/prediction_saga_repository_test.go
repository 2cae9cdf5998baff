package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
)

func TestInstanceEncoding_RoundTrip(t *testing.T) {
	t.Parallel()

	confidence := float32(0.64)
	completed := time.Date(2026, 10, 18, 12, 0, 5, 0, time.UTC)
	want := predictionsaga.Instance{
		CorrelationID: "c1",
		CurrentState:  predictionsaga.StateCompleted,
		MatchID:       "m1",
		PredictionID:  "p1",
		Confidence:    &confidence,
		RequestedAt:   time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		CompletedAt:   &completed,
		Version:       2,
		UpdatedAt:     completed,
	}

	raw, err := encodeInstance(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeInstance(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("instance mismatch (-want +got):\n%s", diff)
	}
}

func TestKeys_UsePrefix(t *testing.T) {
	t.Parallel()

	repo := NewPredictionSagaRepository(nil, WithSagaKeyPrefix("test:saga:"))
	if got := repo.instanceKey("c1"); got != "test:saga:instance:c1" {
		t.Fatalf("unexpected instance key %s", got)
	}
	if got := repo.stateKey(predictionsaga.StateRequested); got != "test:saga:state:Requested" {
		t.Fatalf("unexpected state key %s", got)
	}
}

func TestSplitIndexed_ReportsStaleMembers(t *testing.T) {
	t.Parallel()

	requested := predictionsaga.Instance{CorrelationID: "live", CurrentState: predictionsaga.StateRequested, Version: 1}
	moved := predictionsaga.Instance{CorrelationID: "moved", CurrentState: predictionsaga.StateCompleted, Version: 2}
	liveRaw, err := encodeInstance(requested)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	movedRaw, err := encodeInstance(moved)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	ids := []string{"expired", "live", "moved"}
	values := []any{nil, string(liveRaw), string(movedRaw)}
	out, stale, err := splitIndexed(ids, values, predictionsaga.StateRequested)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(out) != 1 || out[0].CorrelationID != "live" {
		t.Fatalf("expected only the live saga, got %+v", out)
	}
	if diff := cmp.Diff([]any{"expired", "moved"}, stale); diff != "" {
		t.Fatalf("stale members mismatch (-want +got):\n%s", diff)
	}
}

// Runs against a real server when REDIS_TEST_URL is set.
func TestPredictionSagaRepository_OptimisticUpdate(t *testing.T) {
	redisURL := os.Getenv("REDIS_TEST_URL")
	if redisURL == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := goredis.NewClient(opts)
	defer rdb.Close()

	ctx := context.Background()
	prefix := "test:saga:" + time.Now().Format("150405.000000") + ":"
	repo := NewPredictionSagaRepository(rdb, WithSagaKeyPrefix(prefix), WithFinalizedTTL(time.Minute))
	defer func() {
		keys, _ := rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			_ = rdb.Del(ctx, keys...).Err()
		}
	}()

	now := time.Now().UTC().Truncate(time.Millisecond)
	inst, _ := predictionsaga.Start(predictionsaga.Request{CorrelationID: "c1", MatchID: "m1"}, now)
	if err := repo.Insert(ctx, inst); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, inst); !errors.Is(err, predictionsaga.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	requested, err := repo.ListByState(ctx, predictionsaga.StateRequested, 10)
	if err != nil || len(requested) != 1 {
		t.Fatalf("expected one requested saga, got %d err=%v", len(requested), err)
	}

	done, _, _ := inst.Complete(predictionsaga.Completion{CorrelationID: "c1", Success: true}, now)
	if err := repo.Update(ctx, done); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Update(ctx, done); !errors.Is(err, predictionsaga.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	requested, _ = repo.ListByState(ctx, predictionsaga.StateRequested, 10)
	if len(requested) != 0 {
		t.Fatalf("expected requested index to be empty, got %d", len(requested))
	}
	got, ok, err := repo.Get(ctx, "c1")
	if err != nil || !ok || got.CurrentState != predictionsaga.StateCompleted {
		t.Fatalf("unexpected stored saga ok=%v err=%v state=%s", ok, err, got.CurrentState)
	}

	// An expired final instance is dropped from its index on the next listing.
	if err := rdb.Del(ctx, repo.instanceKey("c1")).Err(); err != nil {
		t.Fatalf("expire instance: %v", err)
	}
	completed, err := repo.ListByState(ctx, predictionsaga.StateCompleted, 10)
	if err != nil || len(completed) != 0 {
		t.Fatalf("expected no completed sagas, got %d err=%v", len(completed), err)
	}
	if n, _ := rdb.ZCard(ctx, repo.stateKey(predictionsaga.StateCompleted)).Result(); n != 0 {
		t.Fatalf("expected completed index to be pruned, got %d members", n)
	}
}
