package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
)

type PredictionRepository struct {
	mu          sync.RWMutex
	predictions []prediction.MatchPrediction
	matches     *MatchRepository
}

func NewPredictionRepository(matches *MatchRepository) *PredictionRepository {
	return &PredictionRepository{matches: matches}
}

func (r *PredictionRepository) Create(_ context.Context, p prediction.MatchPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.predictions {
		if existing.ID == p.ID {
			return fmt.Errorf("prediction %s already exists", p.ID)
		}
	}
	p.ContextEmbedding = cloneVector(p.ContextEmbedding)
	r.predictions = append(r.predictions, p)
	return nil
}

func (r *PredictionRepository) GetByID(_ context.Context, predictionID string) (prediction.MatchPrediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.predictions {
		if p.ID == predictionID {
			return p, true, nil
		}
	}
	return prediction.MatchPrediction{}, false, nil
}

// ListByMatch returns the match's predictions, newest first.
func (r *PredictionRepository) ListByMatch(_ context.Context, matchID string) ([]prediction.MatchPrediction, error) {
	r.mu.RLock()
	out := make([]prediction.MatchPrediction, 0)
	for _, p := range r.predictions {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].PredictedAt.After(out[j].PredictedAt) })
	return out, nil
}

// SearchSimilar ranks stored context embeddings and joins the predicted match.
func (r *PredictionRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]prediction.SimilarMatch, error) {
	r.mu.RLock()
	items := append([]prediction.MatchPrediction(nil), r.predictions...)
	r.mu.RUnlock()

	vectors := make([][]float32, len(items))
	for i, p := range items {
		vectors[i] = p.ContextEmbedding
	}

	out := make([]prediction.SimilarMatch, 0, limit)
	for _, hit := range rankBySimilarity(embedding, vectors, limit) {
		p := items[hit.index]
		similar := prediction.SimilarMatch{
			MatchID:            p.MatchID,
			HomeWinProbability: p.HomeWinProbability,
			DrawProbability:    p.DrawProbability,
			AwayWinProbability: p.AwayWinProbability,
			Similarity:         hit.similarity,
		}
		if r.matches != nil {
			if m, ok, _ := r.matches.GetByID(ctx, p.MatchID); ok {
				similar.HomeTeamID, similar.HomeTeamName = m.HomeTeamID, m.HomeTeamName
				similar.AwayTeamID, similar.AwayTeamName = m.AwayTeamID, m.AwayTeamName
				similar.MatchDate = m.MatchDate
				similar.ActualHomeScore, similar.ActualAwayScore = m.HomeScore, m.AwayScore
			}
		}
		out = append(out, similar)
	}
	return out, nil
}
