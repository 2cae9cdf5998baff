package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

// PredictionSagaRepository stores saga instances in prediction_sagas with a
// version column for optimistic concurrency.
type PredictionSagaRepository struct {
	db *sqlx.DB
}

func NewPredictionSagaRepository(db *sqlx.DB) *PredictionSagaRepository {
	return &PredictionSagaRepository{db: db}
}

func (r *PredictionSagaRepository) Get(ctx context.Context, correlationID string) (predictionsaga.Instance, bool, error) {
	query, args, err := qb.Select("*").From("prediction_sagas").
		Where(qb.Eq("correlation_id", correlationID)).
		ToSQL()
	if err != nil {
		return predictionsaga.Instance{}, false, fmt.Errorf("build get prediction saga query: %w", err)
	}

	var row predictionSagaTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return predictionsaga.Instance{}, false, nil
		}
		return predictionsaga.Instance{}, false, fmt.Errorf("get prediction saga: %w", err)
	}

	return predictionSagaFromRow(row), true, nil
}

func (r *PredictionSagaRepository) Insert(ctx context.Context, inst predictionsaga.Instance) error {
	query, args, err := qb.InsertModel("prediction_sagas", predictionSagaInsertModelFrom(inst), &qb.Conflict{Target: []string{"correlation_id"}, DoNothing: true})
	if err != nil {
		return fmt.Errorf("build insert prediction saga query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert prediction saga correlation_id=%s: %w", inst.CorrelationID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert prediction saga rows affected: %w", err)
	}
	if affected == 0 {
		return predictionsaga.ErrAlreadyExists
	}
	return nil
}

func (r *PredictionSagaRepository) Update(ctx context.Context, inst predictionsaga.Instance) error {
	model := predictionSagaInsertModelFrom(inst)
	query, args, err := qb.Update("prediction_sagas").
		Set("current_state", model.CurrentState).
		Set("additional_context", model.AdditionalContext).
		Set("prediction_id", model.PredictionID).
		Set("confidence", model.Confidence).
		Set("completed_at", model.CompletedAt).
		Set("error_message", model.ErrorMessage).
		Set("retry_count", model.RetryCount).
		Set("version", model.Version).
		Set("updated_at", model.UpdatedAt).
		Where(
			qb.Eq("correlation_id", inst.CorrelationID),
			qb.Eq("version", inst.Version-1),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update prediction saga query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update prediction saga correlation_id=%s: %w", inst.CorrelationID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update prediction saga rows affected: %w", err)
	}
	if affected == 0 {
		return predictionsaga.ErrVersionConflict
	}
	return nil
}

func (r *PredictionSagaRepository) ListByState(ctx context.Context, state predictionsaga.State, limit int) ([]predictionsaga.Instance, error) {
	query, args, err := qb.Select("*").From("prediction_sagas").
		Where(qb.Eq("current_state", string(state))).
		OrderBy("requested_at").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list prediction sagas query: %w", err)
	}

	var rows []predictionSagaTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list prediction sagas state=%s: %w", state, err)
	}

	out := make([]predictionsaga.Instance, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionSagaFromRow(row))
	}
	return out, nil
}

func predictionSagaInsertModelFrom(inst predictionsaga.Instance) predictionSagaInsertModel {
	return predictionSagaInsertModel{
		CorrelationID:     inst.CorrelationID,
		CurrentState:      string(inst.CurrentState),
		MatchID:           inst.MatchID,
		AdditionalContext: optionalString(inst.AdditionalContext),
		PredictionID:      optionalString(inst.PredictionID),
		Confidence:        inst.Confidence,
		RequestedAt:       inst.RequestedAt.UTC(),
		CompletedAt:       inst.CompletedAt,
		ErrorMessage:      optionalString(inst.ErrorMessage),
		RetryCount:        inst.RetryCount,
		Version:           inst.Version,
		UpdatedAt:         inst.UpdatedAt.UTC(),
	}
}

func predictionSagaFromRow(row predictionSagaTableModel) predictionsaga.Instance {
	var confidence *float32
	if row.Confidence.Valid {
		v := float32(row.Confidence.Float64)
		confidence = &v
	}

	return predictionsaga.Instance{
		CorrelationID:     row.CorrelationID,
		CurrentState:      predictionsaga.State(row.CurrentState),
		MatchID:           row.MatchID,
		AdditionalContext: nullStringValue(row.AdditionalContext),
		PredictionID:      nullStringValue(row.PredictionID),
		Confidence:        confidence,
		RequestedAt:       row.RequestedAt.UTC(),
		CompletedAt:       row.CompletedAt,
		ErrorMessage:      nullStringValue(row.ErrorMessage),
		RetryCount:        row.RetryCount,
		Version:           row.Version,
		UpdatedAt:         row.UpdatedAt,
	}
}
