package postgres

import (
	"database/sql"
	"time"

	"github.com/pgvector/pgvector-go"
)

type teamTableModel struct {
	ID         string           `db:"id"`
	ExternalID sql.NullInt64    `db:"external_id"`
	Name       string           `db:"name"`
	ShortName  sql.NullString   `db:"short_name"`
	TLA        sql.NullString   `db:"tla"`
	Country    sql.NullString   `db:"country"`
	League     sql.NullString   `db:"league"`
	Crest      sql.NullString   `db:"crest"`
	Address    sql.NullString   `db:"address"`
	Website    sql.NullString   `db:"website"`
	Founded    sql.NullInt64    `db:"founded"`
	ClubColors sql.NullString   `db:"club_colors"`
	Venue      sql.NullString   `db:"venue"`
	RawJSON    sql.NullString   `db:"raw_json"`
	Embedding  *pgvector.Vector `db:"embedding"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
}

type teamInsertModel struct {
	ID         string           `db:"id"`
	ExternalID *int64           `db:"external_id"`
	Name       string           `db:"name"`
	ShortName  *string          `db:"short_name"`
	TLA        *string          `db:"tla"`
	Country    *string          `db:"country"`
	League     *string          `db:"league"`
	Crest      *string          `db:"crest"`
	Address    *string          `db:"address"`
	Website    *string          `db:"website"`
	Founded    *int             `db:"founded"`
	ClubColors *string          `db:"club_colors"`
	Venue      *string          `db:"venue"`
	RawJSON    *string          `db:"raw_json"`
	Embedding  *pgvector.Vector `db:"embedding"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
}

type teamScoredRow struct {
	teamTableModel
	Similarity float64 `db:"similarity"`
}
