package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID           string         `db:"id"`
	HomeTeamID   string         `db:"home_team_id"`
	HomeTeamName sql.NullString `db:"home_team_name"`
	AwayTeamID   string         `db:"away_team_id"`
	AwayTeamName sql.NullString `db:"away_team_name"`
	MatchDate    time.Time      `db:"match_date"`
	Stadium      sql.NullString `db:"stadium"`
	HomeScore    sql.NullInt64  `db:"home_score"`
	AwayScore    sql.NullInt64  `db:"away_score"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	ID         string    `db:"id"`
	HomeTeamID string    `db:"home_team_id"`
	AwayTeamID string    `db:"away_team_id"`
	MatchDate  time.Time `db:"match_date"`
	Stadium    *string   `db:"stadium"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type matchEventTableModel struct {
	ID          string         `db:"id"`
	MatchID     string         `db:"match_id"`
	PlayerID    sql.NullString `db:"player_id"`
	PlayerName  sql.NullString `db:"player_name"`
	EventType   string         `db:"event_type"`
	Minute      int            `db:"minute"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}
