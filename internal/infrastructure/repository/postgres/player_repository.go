package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"p.id",
	"p.name",
	"p.position",
	"p.jersey_number",
	"p.date_of_birth",
	"p.team_id",
	"t.name AS team_name",
	"p.created_at",
	"p.updated_at",
}

const playerFromClause = "players p LEFT JOIN teams t ON t.id = p.team_id"

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context, teamID string) ([]player.Player, error) {
	if teamID != "" && !isUUID(teamID) {
		return []player.Player{}, nil
	}
	builder := qb.Select(playerSelectColumns...).From(playerFromClause)
	if teamID != "" {
		builder = builder.Where(qb.Eq("p.team_id", teamID))
	}
	query, args, err := builder.OrderBy("p.name").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	if !isUUID(playerID) {
		return player.Player{}, false, nil
	}
	query, args, err := qb.Select(playerSelectColumns...).From(playerFromClause).
		Where(qb.Eq("p.id", playerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player by id query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by id: %w", err)
	}

	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) error {
	insertModel := playerInsertModel{
		ID:           p.ID,
		Name:         p.Name,
		Position:     optionalString(p.Position),
		JerseyNumber: p.JerseyNumber,
		DateOfBirth:  p.DateOfBirth,
		TeamID:       p.TeamID,
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("players", insertModel, nil)
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player id=%s: %w", p.ID, err)
	}
	return nil
}

func playerFromRow(row playerTableModel) player.Player {
	var jersey *int
	if row.JerseyNumber.Valid {
		v := int(row.JerseyNumber.Int64)
		jersey = &v
	}
	var teamID *string
	if row.TeamID.Valid {
		v := row.TeamID.String
		teamID = &v
	}

	return player.Player{
		ID:           row.ID,
		Name:         row.Name,
		Position:     nullStringValue(row.Position),
		JerseyNumber: jersey,
		DateOfBirth:  row.DateOfBirth,
		TeamID:       teamID,
		TeamName:     nullStringValue(row.TeamName),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
