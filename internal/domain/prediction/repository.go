package prediction

import "context"

// Repository describes prediction persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, p MatchPrediction) error
	GetByID(ctx context.Context, predictionID string) (MatchPrediction, bool, error)
	// ListByMatch returns predictions newest first.
	ListByMatch(ctx context.Context, matchID string) ([]MatchPrediction, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]SimilarMatch, error)
}
