package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

var matchSelectColumns = []string{
	"m.id",
	"m.home_team_id",
	"ht.name AS home_team_name",
	"m.away_team_id",
	"aw.name AS away_team_name",
	"m.match_date",
	"m.stadium",
	"m.home_score",
	"m.away_score",
	"m.status",
	"m.created_at",
	"m.updated_at",
}

const matchFromClause = "matches m LEFT JOIN teams ht ON ht.id = m.home_team_id LEFT JOIN teams aw ON aw.id = m.away_team_id"

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	conditions := make([]qb.Condition, 0, 3)
	if !filter.From.IsZero() {
		conditions = append(conditions, qb.Gte("m.match_date", filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, qb.Lte("m.match_date", filter.To.UTC()))
	}
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("m.status", string(filter.Status)))
	}

	query, args, err := qb.Select(matchSelectColumns...).From(matchFromClause).
		Where(conditions...).
		OrderBy("m.match_date").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	if !isUUID(matchID) {
		return match.Match{}, false, nil
	}
	query, args, err := qb.Select(matchSelectColumns...).From(matchFromClause).
		Where(qb.Eq("m.id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	insertModel := matchInsertModel{
		ID:         m.ID,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		MatchDate:  m.MatchDate.UTC(),
		Stadium:    optionalString(m.Stadium),
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("matches", insertModel, nil)
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match id=%s: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepository) ListEvents(ctx context.Context, matchID string) ([]match.Event, error) {
	if !isUUID(matchID) {
		return []match.Event{}, nil
	}
	query, args, err := qb.Select(
		"e.id",
		"e.match_id",
		"e.player_id",
		"p.name AS player_name",
		"e.event_type",
		"e.minute",
		"e.description",
		"e.created_at",
	).From("match_events e LEFT JOIN players p ON p.id = e.player_id").
		Where(qb.Eq("e.match_id", matchID)).
		OrderBy("e.minute", "e.created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match events query: %w", err)
	}

	var rows []matchEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match events: %w", err)
	}

	out := make([]match.Event, 0, len(rows))
	for _, row := range rows {
		var playerID *string
		if row.PlayerID.Valid {
			v := row.PlayerID.String
			playerID = &v
		}
		out = append(out, match.Event{
			ID:          row.ID,
			MatchID:     row.MatchID,
			PlayerID:    playerID,
			PlayerName:  nullStringValue(row.PlayerName),
			EventType:   row.EventType,
			Minute:      row.Minute,
			Description: nullStringValue(row.Description),
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:           row.ID,
		HomeTeamID:   row.HomeTeamID,
		HomeTeamName: nullStringValue(row.HomeTeamName),
		AwayTeamID:   row.AwayTeamID,
		AwayTeamName: nullStringValue(row.AwayTeamName),
		MatchDate:    row.MatchDate.UTC(),
		Stadium:      nullStringValue(row.Stadium),
		HomeScore:    nullableInt(row.HomeScore),
		AwayScore:    nullableInt(row.AwayScore),
		Status:       match.Status(row.Status),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func nullableInt(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}
