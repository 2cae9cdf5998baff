package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByExternalID(ctx context.Context, externalID int64) (season.Season, bool, error) {
	query, args, err := seasonBaseSelectBuilder().
		Where(qb.Eq("s.external_id", externalID)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season by external id query: %w", err)
	}

	var row seasonReadModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season by external id: %w", err)
	}

	return seasonFromRow(row.seasonTableModel, nullStringValue(row.CompetitionName)), true, nil
}

func (r *SeasonRepository) ListByCompetition(ctx context.Context, competitionID string) ([]season.Season, error) {
	return r.list(ctx, "list seasons by competition", qb.Eq("s.competition_id", competitionID))
}

func (r *SeasonRepository) ListWithin(ctx context.Context, start, end time.Time) ([]season.Season, error) {
	return r.list(ctx, "list seasons within range", qb.Gte("s.start_date", start), qb.Lte("s.end_date", end))
}

func (r *SeasonRepository) list(ctx context.Context, op string, conditions ...qb.Condition) ([]season.Season, error) {
	query, args, err := seasonBaseSelectBuilder().
		Where(conditions...).
		OrderBy("s.start_date DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []seasonReadModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row.seasonTableModel, nullStringValue(row.CompetitionName)))
	}
	return out, nil
}

func (r *SeasonRepository) Upsert(ctx context.Context, s season.Season) (season.Season, error) {
	insertModel := seasonInsertModel{
		ID:               s.ID,
		ExternalID:       s.ExternalID,
		CompetitionID:    s.CompetitionID,
		StartDate:        s.StartDate.UTC(),
		EndDate:          s.EndDate.UTC(),
		CurrentMatchday:  s.CurrentMatchday,
		WinnerExternalID: s.WinnerExternalID,
		WinnerName:       optionalString(s.WinnerName),
		Stages:           pq.StringArray(s.Stages),
		RawJSON:          rawJSON(s.RawJSON),
		Embedding:        vectorOrNil(s.Embedding),
		CreatedAt:        s.CreatedAt.UTC(),
		UpdatedAt:        s.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("seasons", insertModel, &qb.Conflict{
		Target:    []string{"external_id"},
		Keep:      []string{"id", "created_at"},
		Coalesce:  []string{"embedding"},
		Returning: "*",
	})
	if err != nil {
		return season.Season{}, fmt.Errorf("build upsert season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return season.Season{}, fmt.Errorf("upsert season external_id=%d: %w", s.ExternalID, err)
	}

	return seasonFromRow(row, s.CompetitionName), nil
}

func (r *SeasonRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	query, args, err := qb.Update("seasons").
		Set("embedding", vectorOrNil(embedding)).
		Touch("updated_at").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update season embedding query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update season embedding id=%s: %w", id, err)
	}
	return nil
}

func seasonBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("s.*", "c.name AS competition_name").
		From("seasons s LEFT JOIN competitions c ON c.id = s.competition_id")
}

func seasonFromRow(row seasonTableModel, competitionName string) season.Season {
	var matchday *int
	if row.CurrentMatchday.Valid {
		v := int(row.CurrentMatchday.Int64)
		matchday = &v
	}
	var winnerID *int64
	if row.WinnerExternalID.Valid {
		v := row.WinnerExternalID.Int64
		winnerID = &v
	}

	return season.Season{
		ID:               row.ID,
		ExternalID:       row.ExternalID,
		CompetitionID:    row.CompetitionID,
		CompetitionName:  competitionName,
		StartDate:        row.StartDate.UTC(),
		EndDate:          row.EndDate.UTC(),
		CurrentMatchday:  matchday,
		WinnerExternalID: winnerID,
		WinnerName:       nullStringValue(row.WinnerName),
		Stages:           []string(row.Stages),
		RawJSON:          rawJSONBytes(row.RawJSON),
		Embedding:        vectorSlice(row.Embedding),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
