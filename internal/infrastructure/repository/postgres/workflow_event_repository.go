package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

type WorkflowEventRepository struct {
	db *sqlx.DB
}

func NewWorkflowEventRepository(db *sqlx.DB) *WorkflowEventRepository {
	return &WorkflowEventRepository{db: db}
}

func (r *WorkflowEventRepository) Append(ctx context.Context, event workflow.Event) error {
	data, err := marshalEventData(event.Data)
	if err != nil {
		return fmt.Errorf("marshal workflow event data: %w", err)
	}

	model := workflowEventModel{
		ID:           event.ID,
		WorkflowID:   event.WorkflowID,
		WorkflowType: event.WorkflowType,
		EventType:    string(event.EventType),
		NodeID:       event.NodeID,
		Data:         data,
		TraceID:      sql.NullString{String: event.TraceID, Valid: event.TraceID != ""},
		SpanID:       sql.NullString{String: event.SpanID, Valid: event.SpanID != ""},
		OccurredAt:   event.OccurredAt.UTC(),
	}

	query, args, err := qb.InsertModel("workflow_events", model, nil)
	if err != nil {
		return fmt.Errorf("build insert workflow event query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert workflow event workflow_id=%s node=%s: %w", event.WorkflowID, event.NodeID, err)
	}
	return nil
}

func (r *WorkflowEventRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]workflow.Event, error) {
	query, args, err := qb.Select("*").From("workflow_events").
		Where(qb.Eq("workflow_id", workflowID)).
		OrderBy("occurred_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select workflow events query: %w", err)
	}

	var rows []workflowEventModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select workflow events: %w", err)
	}

	out := make([]workflow.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, workflow.Event{
			ID:           row.ID,
			WorkflowID:   row.WorkflowID,
			WorkflowType: row.WorkflowType,
			EventType:    workflow.EventType(row.EventType),
			NodeID:       row.NodeID,
			Data:         decodeEventData(row.Data),
			TraceID:      nullStringValue(row.TraceID),
			SpanID:       nullStringValue(row.SpanID),
			OccurredAt:   row.OccurredAt.UTC(),
		})
	}
	return out, nil
}

func marshalEventData(data map[string]any) (sql.NullString, error) {
	if len(data) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := sonic.Marshal(data)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// decodeEventData drops payloads that no longer parse.
func decodeEventData(raw sql.NullString) map[string]any {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	out := map[string]any{}
	if err := sonic.UnmarshalString(raw.String, &out); err != nil {
		return nil
	}
	return out
}
