package postgres

import (
	"database/sql"
	"time"
)

type playerTableModel struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Position     sql.NullString `db:"position"`
	JerseyNumber sql.NullInt64  `db:"jersey_number"`
	DateOfBirth  *time.Time     `db:"date_of_birth"`
	TeamID       sql.NullString `db:"team_id"`
	TeamName     sql.NullString `db:"team_name"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type playerInsertModel struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	Position     *string    `db:"position"`
	JerseyNumber *int       `db:"jersey_number"`
	DateOfBirth  *time.Time `db:"date_of_birth"`
	TeamID       *string    `db:"team_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
