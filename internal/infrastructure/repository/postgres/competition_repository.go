package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) GetByCode(ctx context.Context, code string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(qb.Eq("code", competition.NormalizeCode(code))).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build get competition by code query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("get competition by code: %w", err)
	}

	return competitionFromRow(row), true, nil
}

// Upsert keys on code; an existing row keeps its id, created_at and embedding.
func (r *CompetitionRepository) Upsert(ctx context.Context, c competition.Competition) (competition.Competition, error) {
	insertModel := competitionInsertModel{
		ID:         c.ID,
		ExternalID: c.ExternalID,
		Name:       c.Name,
		Code:       competition.NormalizeCode(c.Code),
		Type:       optionalString(c.Type),
		Emblem:     optionalString(c.Emblem),
		AreaName:   optionalString(c.AreaName),
		AreaCode:   optionalString(c.AreaCode),
		AreaFlag:   optionalString(c.AreaFlag),
		RawJSON:    rawJSON(c.RawJSON),
		Embedding:  vectorOrNil(c.Embedding),
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
		SyncedAt:   c.SyncedAt,
	}

	query, args, err := qb.InsertModel("competitions", insertModel, &qb.Conflict{
		Target:    []string{"code"},
		Keep:      []string{"id", "created_at"},
		Coalesce:  []string{"embedding"},
		Returning: "*",
	})
	if err != nil {
		return competition.Competition{}, fmt.Errorf("build upsert competition query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return competition.Competition{}, fmt.Errorf("upsert competition code=%s: %w", insertModel.Code, err)
	}

	return competitionFromRow(row), nil
}

func (r *CompetitionRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	query, args, err := qb.Update("competitions").
		Set("embedding", vectorOrNil(embedding)).
		Touch("updated_at").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update competition embedding query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update competition embedding id=%s: %w", id, err)
	}
	return nil
}

func (r *CompetitionRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]competition.Scored, error) {
	vector := pgvector.NewVector(embedding)
	query, args, err := qb.Select("*").
		From("competitions").
		NearestTo("embedding", vector).
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search competitions by embedding query: %w", err)
	}

	var rows []competitionScoredRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search competitions by embedding: %w", err)
	}

	out := make([]competition.Scored, 0, len(rows))
	for _, row := range rows {
		out = append(out, competition.Scored{
			Competition: competitionFromRow(row.competitionTableModel),
			Similarity:  row.Similarity,
		})
	}
	return out, nil
}

func (r *CompetitionRepository) SearchByText(ctx context.Context, query string, limit int) ([]competition.Competition, error) {
	sqlQuery, args, err := qb.Select("*").From("competitions").
		Where(qb.Or(
			qb.Contains("name", query),
			qb.Contains("area_name", query),
			qb.Contains("code", query),
		)).
		OrderBy("name").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search competitions by text query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("search competitions by text: %w", err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, competitionFromRow(row))
	}
	return out, nil
}

func competitionFromRow(row competitionTableModel) competition.Competition {
	return competition.Competition{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Name:       row.Name,
		Code:       row.Code,
		Type:       nullStringValue(row.Type),
		Emblem:     nullStringValue(row.Emblem),
		AreaName:   nullStringValue(row.AreaName),
		AreaCode:   nullStringValue(row.AreaCode),
		AreaFlag:   nullStringValue(row.AreaFlag),
		RawJSON:    rawJSONBytes(row.RawJSON),
		Embedding:  vectorSlice(row.Embedding),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		SyncedAt:   row.SyncedAt,
	}
}
