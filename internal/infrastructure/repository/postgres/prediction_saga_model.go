package postgres

import (
	"database/sql"
	"time"
)

type predictionSagaTableModel struct {
	CorrelationID     string          `db:"correlation_id"`
	CurrentState      string          `db:"current_state"`
	MatchID           string          `db:"match_id"`
	AdditionalContext sql.NullString  `db:"additional_context"`
	PredictionID      sql.NullString  `db:"prediction_id"`
	Confidence        sql.NullFloat64 `db:"confidence"`
	RequestedAt       time.Time       `db:"requested_at"`
	CompletedAt       *time.Time      `db:"completed_at"`
	ErrorMessage      sql.NullString  `db:"error_message"`
	RetryCount        int             `db:"retry_count"`
	Version           int64           `db:"version"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type predictionSagaInsertModel struct {
	CorrelationID     string     `db:"correlation_id"`
	CurrentState      string     `db:"current_state"`
	MatchID           string     `db:"match_id"`
	AdditionalContext *string    `db:"additional_context"`
	PredictionID      *string    `db:"prediction_id"`
	Confidence        *float32   `db:"confidence"`
	RequestedAt       time.Time  `db:"requested_at"`
	CompletedAt       *time.Time `db:"completed_at"`
	ErrorMessage      *string    `db:"error_message"`
	RetryCount        int        `db:"retry_count"`
	Version           int64      `db:"version"`
	UpdatedAt         time.Time  `db:"updated_at"`
}
