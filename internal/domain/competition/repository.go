package competition

import "context"

// Repository describes competition persistence needs from use cases.
type Repository interface {
	GetByCode(ctx context.Context, code string) (Competition, bool, error)
	// Upsert inserts or refreshes the competition keyed by code and returns the stored row.
	Upsert(ctx context.Context, c Competition) (Competition, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]Scored, error)
	SearchByText(ctx context.Context, query string, limit int) ([]Competition, error)
}
