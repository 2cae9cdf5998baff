package postgres

import (
	"database/sql"
	"time"
)

type workflowEventModel struct {
	ID           string         `db:"id"`
	WorkflowID   string         `db:"workflow_id"`
	WorkflowType string         `db:"workflow_type"`
	EventType    string         `db:"event_type"`
	NodeID       string         `db:"node_id"`
	Data         sql.NullString `db:"data"`
	TraceID      sql.NullString `db:"trace_id"`
	SpanID       sql.NullString `db:"span_id"`
	OccurredAt   time.Time      `db:"occurred_at"`
}
