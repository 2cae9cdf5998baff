package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
)

const defaultSagaKeyPrefix = "dotmatchlens:saga:"

// PredictionSagaRepository keeps each instance as a JSON string and indexes
// correlation ids per state in a sorted set scored by request time.
type PredictionSagaRepository struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

type SagaOption func(*PredictionSagaRepository)

func WithSagaKeyPrefix(prefix string) SagaOption {
	return func(r *PredictionSagaRepository) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithFinalizedTTL expires instances this long after they reach a final state.
func WithFinalizedTTL(ttl time.Duration) SagaOption {
	return func(r *PredictionSagaRepository) {
		r.ttl = ttl
	}
}

func NewPredictionSagaRepository(rdb goredis.UniversalClient, opts ...SagaOption) *PredictionSagaRepository {
	r := &PredictionSagaRepository{rdb: rdb, prefix: defaultSagaKeyPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type sagaRecord struct {
	CorrelationID     string     `json:"correlationId"`
	CurrentState      string     `json:"currentState"`
	MatchID           string     `json:"matchId"`
	AdditionalContext string     `json:"additionalContext,omitempty"`
	PredictionID      string     `json:"predictionId,omitempty"`
	Confidence        *float32   `json:"confidence,omitempty"`
	RequestedAt       time.Time  `json:"requestedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
	RetryCount        int        `json:"retryCount"`
	Version           int64      `json:"version"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (r *PredictionSagaRepository) instanceKey(correlationID string) string {
	return r.prefix + "instance:" + correlationID
}

func (r *PredictionSagaRepository) stateKey(state predictionsaga.State) string {
	return r.prefix + "state:" + string(state)
}

func (r *PredictionSagaRepository) Get(ctx context.Context, correlationID string) (predictionsaga.Instance, bool, error) {
	raw, err := r.rdb.Get(ctx, r.instanceKey(correlationID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return predictionsaga.Instance{}, false, nil
	}
	if err != nil {
		return predictionsaga.Instance{}, false, fmt.Errorf("get saga %s: %w", correlationID, err)
	}

	inst, err := decodeInstance(raw)
	if err != nil {
		return predictionsaga.Instance{}, false, fmt.Errorf("decode saga %s: %w", correlationID, err)
	}
	return inst, true, nil
}

// Insert writes the record and its state index entry in one MULTI block. The
// key is watched so a concurrent insert of the same id aborts this one.
func (r *PredictionSagaRepository) Insert(ctx context.Context, inst predictionsaga.Instance) error {
	raw, err := encodeInstance(inst)
	if err != nil {
		return fmt.Errorf("encode saga %s: %w", inst.CorrelationID, err)
	}
	key := r.instanceKey(inst.CorrelationID)

	err = r.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return predictionsaga.ErrAlreadyExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			pipe.ZAdd(ctx, r.stateKey(inst.CurrentState), stateMember(inst))
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, goredis.TxFailedErr), errors.Is(err, predictionsaga.ErrAlreadyExists):
		return predictionsaga.ErrAlreadyExists
	default:
		return fmt.Errorf("insert saga %s: %w", inst.CorrelationID, err)
	}
}

// Update compares the stored version under WATCH and swaps the record in a
// MULTI block; a concurrent writer aborts the transaction.
func (r *PredictionSagaRepository) Update(ctx context.Context, inst predictionsaga.Instance) error {
	raw, err := encodeInstance(inst)
	if err != nil {
		return fmt.Errorf("encode saga %s: %w", inst.CorrelationID, err)
	}
	key := r.instanceKey(inst.CorrelationID)

	err = r.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return predictionsaga.ErrVersionConflict
		}
		if err != nil {
			return err
		}
		stored, err := decodeInstance(current)
		if err != nil {
			return err
		}
		if stored.Version != inst.Version-1 {
			return predictionsaga.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			var ttl time.Duration
			if inst.CurrentState.Final() {
				ttl = r.ttl
			}
			pipe.Set(ctx, key, raw, ttl)
			if stored.CurrentState != inst.CurrentState {
				pipe.ZRem(ctx, r.stateKey(stored.CurrentState), inst.CorrelationID)
			}
			pipe.ZAdd(ctx, r.stateKey(inst.CurrentState), stateMember(inst))
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, goredis.TxFailedErr), errors.Is(err, predictionsaga.ErrVersionConflict):
		return predictionsaga.ErrVersionConflict
	default:
		return fmt.Errorf("update saga %s: %w", inst.CorrelationID, err)
	}
}

// ListByState loads the indexed instances of state. Index entries whose
// instance expired or moved to another state are removed from the index.
func (r *PredictionSagaRepository) ListByState(ctx context.Context, state predictionsaga.State, limit int) ([]predictionsaga.Instance, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	indexKey := r.stateKey(state)
	ids, err := r.rdb.ZRange(ctx, indexKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list saga index %s: %w", state, err)
	}
	if len(ids) == 0 {
		return []predictionsaga.Instance{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.instanceKey(id))
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load sagas %s: %w", state, err)
	}

	out, stale, err := splitIndexed(ids, values, state)
	if err != nil {
		return nil, err
	}
	if len(stale) > 0 {
		if err := r.rdb.ZRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune saga index %s: %w", state, err)
		}
	}
	return out, nil
}

// splitIndexed pairs MGET values with their index ids. Missing records and
// records in another state come back as stale members.
func splitIndexed(ids []string, values []any, state predictionsaga.State) ([]predictionsaga.Instance, []any, error) {
	out := make([]predictionsaga.Instance, 0, len(values))
	var stale []any
	for i, value := range values {
		text, ok := value.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		inst, err := decodeInstance([]byte(text))
		if err != nil {
			return nil, nil, fmt.Errorf("decode saga %s: %w", ids[i], err)
		}
		if inst.CurrentState != state {
			stale = append(stale, ids[i])
			continue
		}
		out = append(out, inst)
	}
	return out, stale, nil
}

func stateMember(inst predictionsaga.Instance) goredis.Z {
	return goredis.Z{Score: float64(inst.RequestedAt.UnixMilli()), Member: inst.CorrelationID}
}

func encodeInstance(inst predictionsaga.Instance) ([]byte, error) {
	return sonic.Marshal(sagaRecord{
		CorrelationID:     inst.CorrelationID,
		CurrentState:      string(inst.CurrentState),
		MatchID:           inst.MatchID,
		AdditionalContext: inst.AdditionalContext,
		PredictionID:      inst.PredictionID,
		Confidence:        inst.Confidence,
		RequestedAt:       inst.RequestedAt.UTC(),
		CompletedAt:       inst.CompletedAt,
		ErrorMessage:      inst.ErrorMessage,
		RetryCount:        inst.RetryCount,
		Version:           inst.Version,
		UpdatedAt:         inst.UpdatedAt.UTC(),
	})
}

func decodeInstance(raw []byte) (predictionsaga.Instance, error) {
	var rec sagaRecord
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		return predictionsaga.Instance{}, err
	}
	return predictionsaga.Instance{
		CorrelationID:     rec.CorrelationID,
		CurrentState:      predictionsaga.State(rec.CurrentState),
		MatchID:           rec.MatchID,
		AdditionalContext: rec.AdditionalContext,
		PredictionID:      rec.PredictionID,
		Confidence:        rec.Confidence,
		RequestedAt:       rec.RequestedAt,
		CompletedAt:       rec.CompletedAt,
		ErrorMessage:      rec.ErrorMessage,
		RetryCount:        rec.RetryCount,
		Version:           rec.Version,
		UpdatedAt:         rec.UpdatedAt,
	}, nil
}
