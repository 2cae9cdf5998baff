package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	qb "github.com/riskibarqy/dotmatchlens/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, p prediction.MatchPrediction) error {
	insertModel := predictionInsertModel{
		ID:                 p.ID,
		MatchID:            p.MatchID,
		HomeWinProbability: p.HomeWinProbability,
		DrawProbability:    p.DrawProbability,
		AwayWinProbability: p.AwayWinProbability,
		PredictedHomeScore: p.PredictedHomeScore,
		PredictedAwayScore: p.PredictedAwayScore,
		Reasoning:          optionalString(p.Reasoning),
		ModelVersion:       optionalString(p.ModelVersion),
		Confidence:         p.Confidence,
		PredictedAt:        p.PredictedAt.UTC(),
		ContextEmbedding:   vectorOrNil(p.ContextEmbedding),
	}

	query, args, err := qb.InsertModel("match_predictions", insertModel, nil)
	if err != nil {
		return fmt.Errorf("build insert prediction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert prediction id=%s match_id=%s: %w", p.ID, p.MatchID, err)
	}
	return nil
}

func (r *PredictionRepository) GetByID(ctx context.Context, predictionID string) (prediction.MatchPrediction, bool, error) {
	if !isUUID(predictionID) {
		return prediction.MatchPrediction{}, false, nil
	}
	query, args, err := qb.Select("*").From("match_predictions").
		Where(qb.Eq("id", predictionID)).
		ToSQL()
	if err != nil {
		return prediction.MatchPrediction{}, false, fmt.Errorf("build get prediction by id query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.MatchPrediction{}, false, nil
		}
		return prediction.MatchPrediction{}, false, fmt.Errorf("get prediction by id: %w", err)
	}

	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID string) ([]prediction.MatchPrediction, error) {
	if !isUUID(matchID) {
		return []prediction.MatchPrediction{}, nil
	}
	query, args, err := qb.Select("*").From("match_predictions").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("predicted_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by match query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions by match: %w", err)
	}

	out := make([]prediction.MatchPrediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

// SearchSimilar ranks predictions by context embedding distance and joins the predicted match.
func (r *PredictionRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]prediction.SimilarMatch, error) {
	vector := pgvector.NewVector(embedding)
	query, args, err := qb.Select(
		"mp.match_id",
		"m.home_team_id",
		"ht.name AS home_team_name",
		"m.away_team_id",
		"aw.name AS away_team_name",
		"m.match_date",
		"m.home_score",
		"m.away_score",
		"mp.home_win_probability",
		"mp.draw_probability",
		"mp.away_win_probability",
	).
		From("match_predictions mp JOIN matches m ON m.id = mp.match_id LEFT JOIN teams ht ON ht.id = m.home_team_id LEFT JOIN teams aw ON aw.id = m.away_team_id").
		NearestTo("mp.context_embedding", vector).
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search similar predictions query: %w", err)
	}

	var rows []similarMatchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search similar predictions: %w", err)
	}

	out := make([]prediction.SimilarMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.SimilarMatch{
			MatchID:            row.MatchID,
			HomeTeamID:         row.HomeTeamID,
			HomeTeamName:       nullStringValue(row.HomeTeamName),
			AwayTeamID:         row.AwayTeamID,
			AwayTeamName:       nullStringValue(row.AwayTeamName),
			MatchDate:          row.MatchDate.UTC(),
			ActualHomeScore:    nullableInt(row.HomeScore),
			ActualAwayScore:    nullableInt(row.AwayScore),
			HomeWinProbability: row.HomeWinProbability,
			DrawProbability:    row.DrawProbability,
			AwayWinProbability: row.AwayWinProbability,
			Similarity:         row.Similarity,
		})
	}
	return out, nil
}

func predictionFromRow(row predictionTableModel) prediction.MatchPrediction {
	return prediction.MatchPrediction{
		ID:                 row.ID,
		MatchID:            row.MatchID,
		HomeWinProbability: row.HomeWinProbability,
		DrawProbability:    row.DrawProbability,
		AwayWinProbability: row.AwayWinProbability,
		PredictedHomeScore: nullableInt(row.PredictedHomeScore),
		PredictedAwayScore: nullableInt(row.PredictedAwayScore),
		Reasoning:          nullStringValue(row.Reasoning),
		ModelVersion:       nullStringValue(row.ModelVersion),
		Confidence:         row.Confidence,
		PredictedAt:        row.PredictedAt.UTC(),
		ContextEmbedding:   vectorSlice(row.ContextEmbedding),
	}
}
