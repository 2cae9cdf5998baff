package postgres

import (
	"database/sql"
	"time"

	"github.com/pgvector/pgvector-go"
)

type predictionTableModel struct {
	ID                 string           `db:"id"`
	MatchID            string           `db:"match_id"`
	HomeWinProbability float32          `db:"home_win_probability"`
	DrawProbability    float32          `db:"draw_probability"`
	AwayWinProbability float32          `db:"away_win_probability"`
	PredictedHomeScore sql.NullInt64    `db:"predicted_home_score"`
	PredictedAwayScore sql.NullInt64    `db:"predicted_away_score"`
	Reasoning          sql.NullString   `db:"reasoning"`
	ModelVersion       sql.NullString   `db:"model_version"`
	Confidence         float32          `db:"confidence"`
	PredictedAt        time.Time        `db:"predicted_at"`
	ContextEmbedding   *pgvector.Vector `db:"context_embedding"`
}

type predictionInsertModel struct {
	ID                 string           `db:"id"`
	MatchID            string           `db:"match_id"`
	HomeWinProbability float32          `db:"home_win_probability"`
	DrawProbability    float32          `db:"draw_probability"`
	AwayWinProbability float32          `db:"away_win_probability"`
	PredictedHomeScore *int             `db:"predicted_home_score"`
	PredictedAwayScore *int             `db:"predicted_away_score"`
	Reasoning          *string          `db:"reasoning"`
	ModelVersion       *string          `db:"model_version"`
	Confidence         float32          `db:"confidence"`
	PredictedAt        time.Time        `db:"predicted_at"`
	ContextEmbedding   *pgvector.Vector `db:"context_embedding"`
}

type similarMatchRow struct {
	MatchID            string         `db:"match_id"`
	HomeTeamID         string         `db:"home_team_id"`
	HomeTeamName       sql.NullString `db:"home_team_name"`
	AwayTeamID         string         `db:"away_team_id"`
	AwayTeamName       sql.NullString `db:"away_team_name"`
	MatchDate          time.Time      `db:"match_date"`
	HomeScore          sql.NullInt64  `db:"home_score"`
	AwayScore          sql.NullInt64  `db:"away_score"`
	HomeWinProbability float32        `db:"home_win_probability"`
	DrawProbability    float32        `db:"draw_probability"`
	AwayWinProbability float32        `db:"away_win_probability"`
	Similarity         float64        `db:"similarity"`
}
