package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type seasonTableModel struct {
	ID               string           `db:"id"`
	ExternalID       int64            `db:"external_id"`
	CompetitionID    string           `db:"competition_id"`
	StartDate        time.Time        `db:"start_date"`
	EndDate          time.Time        `db:"end_date"`
	CurrentMatchday  sql.NullInt64    `db:"current_matchday"`
	WinnerExternalID sql.NullInt64    `db:"winner_external_id"`
	WinnerName       sql.NullString   `db:"winner_name"`
	Stages           pq.StringArray   `db:"stages"`
	RawJSON          sql.NullString   `db:"raw_json"`
	Embedding        *pgvector.Vector `db:"embedding"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

type seasonReadModel struct {
	seasonTableModel
	CompetitionName sql.NullString `db:"competition_name"`
}

type seasonInsertModel struct {
	ID               string           `db:"id"`
	ExternalID       int64            `db:"external_id"`
	CompetitionID    string           `db:"competition_id"`
	StartDate        time.Time        `db:"start_date"`
	EndDate          time.Time        `db:"end_date"`
	CurrentMatchday  *int             `db:"current_matchday"`
	WinnerExternalID *int64           `db:"winner_external_id"`
	WinnerName       *string          `db:"winner_name"`
	Stages           pq.StringArray   `db:"stages"`
	RawJSON          *string          `db:"raw_json"`
	Embedding        *pgvector.Vector `db:"embedding"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}
