package postgres

import (
	"database/sql"
	"time"

	"github.com/pgvector/pgvector-go"
)

type competitionTableModel struct {
	ID         string           `db:"id"`
	ExternalID int64            `db:"external_id"`
	Name       string           `db:"name"`
	Code       string           `db:"code"`
	Type       sql.NullString   `db:"type"`
	Emblem     sql.NullString   `db:"emblem"`
	AreaName   sql.NullString   `db:"area_name"`
	AreaCode   sql.NullString   `db:"area_code"`
	AreaFlag   sql.NullString   `db:"area_flag"`
	RawJSON    sql.NullString   `db:"raw_json"`
	Embedding  *pgvector.Vector `db:"embedding"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
	SyncedAt   *time.Time       `db:"synced_at"`
}

type competitionInsertModel struct {
	ID         string           `db:"id"`
	ExternalID int64            `db:"external_id"`
	Name       string           `db:"name"`
	Code       string           `db:"code"`
	Type       *string          `db:"type"`
	Emblem     *string          `db:"emblem"`
	AreaName   *string          `db:"area_name"`
	AreaCode   *string          `db:"area_code"`
	AreaFlag   *string          `db:"area_flag"`
	RawJSON    *string          `db:"raw_json"`
	Embedding  *pgvector.Vector `db:"embedding"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
	SyncedAt   *time.Time       `db:"synced_at"`
}

type competitionScoredRow struct {
	competitionTableModel
	Similarity float64 `db:"similarity"`
}
