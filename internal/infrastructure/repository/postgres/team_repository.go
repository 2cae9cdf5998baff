package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context, filter team.Filter) ([]team.Team, error) {
	conditions := make([]qb.Condition, 0, 2)
	if filter.Name != "" {
		conditions = append(conditions, qb.Contains("name", filter.Name))
	}
	if filter.Country != "" {
		conditions = append(conditions, qb.Expr("LOWER(country) = LOWER(?)", filter.Country))
	}

	query, args, err := qb.Select("*").From("teams").
		Where(conditions...).
		OrderBy("name").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	return r.selectTeams(ctx, "select teams", query, args)
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	if !isUUID(teamID) {
		return team.Team{}, false, nil
	}
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	insertModel := teamInsertModel{
		ID:         t.ID,
		ExternalID: t.ExternalID,
		Name:       t.Name,
		ShortName:  optionalString(t.ShortName),
		TLA:        optionalString(t.TLA),
		Country:    optionalString(t.Country),
		League:     optionalString(t.League),
		Crest:      optionalString(t.Crest),
		Address:    optionalString(t.Address),
		Website:    optionalString(t.Website),
		Founded:    t.Founded,
		ClubColors: optionalString(t.ClubColors),
		Venue:      optionalString(t.Venue),
		RawJSON:    rawJSON(t.RawJSON),
		Embedding:  vectorOrNil(t.Embedding),
		CreatedAt:  t.CreatedAt.UTC(),
		UpdatedAt:  t.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("teams", insertModel, nil)
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert team id=%s: duplicate: %w", t.ID, err)
		}
		return fmt.Errorf("insert team id=%s: %w", t.ID, err)
	}
	return nil
}

func (r *TeamRepository) UpdateEmbedding(ctx context.Context, teamID string, embedding []float32) error {
	query, args, err := qb.Update("teams").
		Set("embedding", vectorOrNil(embedding)).
		Touch("updated_at").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team embedding query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team embedding id=%s: %w", teamID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update team embedding id=%s: team not found", teamID)
	}
	return nil
}

func (r *TeamRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.IsNull("embedding")).
		OrderBy("name").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams missing embedding query: %w", err)
	}

	return r.selectTeams(ctx, "select teams missing embedding", query, args)
}

func (r *TeamRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]team.Scored, error) {
	vector := pgvector.NewVector(embedding)
	query, args, err := qb.Select("*").
		From("teams").
		NearestTo("embedding", vector).
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search teams by embedding query: %w", err)
	}

	var rows []teamScoredRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search teams by embedding: %w", err)
	}

	out := make([]team.Scored, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Scored{Team: teamFromRow(row.teamTableModel), Similarity: row.Similarity})
	}
	return out, nil
}

func (r *TeamRepository) SearchByText(ctx context.Context, query string, limit int) ([]team.Team, error) {
	sqlQuery, args, err := qb.Select("*").From("teams").
		Where(qb.Or(
			qb.Contains("name", query),
			qb.Contains("country", query),
			qb.Contains("venue", query),
		)).
		OrderBy("name").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search teams by text query: %w", err)
	}

	return r.selectTeams(ctx, "search teams by text", sqlQuery, args)
}

func (r *TeamRepository) selectTeams(ctx context.Context, op, query string, args []any) ([]team.Team, error) {
	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func teamFromRow(row teamTableModel) team.Team {
	var externalID *int64
	if row.ExternalID.Valid {
		v := row.ExternalID.Int64
		externalID = &v
	}
	var founded *int
	if row.Founded.Valid {
		v := int(row.Founded.Int64)
		founded = &v
	}

	return team.Team{
		ID:         row.ID,
		ExternalID: externalID,
		Name:       row.Name,
		ShortName:  nullStringValue(row.ShortName),
		TLA:        nullStringValue(row.TLA),
		Country:    nullStringValue(row.Country),
		League:     nullStringValue(row.League),
		Crest:      nullStringValue(row.Crest),
		Address:    nullStringValue(row.Address),
		Website:    nullStringValue(row.Website),
		Founded:    founded,
		ClubColors: nullStringValue(row.ClubColors),
		Venue:      nullStringValue(row.Venue),
		RawJSON:    rawJSONBytes(row.RawJSON),
		Embedding:  vectorSlice(row.Embedding),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
