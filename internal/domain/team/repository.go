package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	// List returns teams matching filter ordered by name.
	List(ctx context.Context, filter Filter) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	Create(ctx context.Context, t Team) error
	UpdateEmbedding(ctx context.Context, teamID string, embedding []float32) error
	ListMissingEmbedding(ctx context.Context, limit int) ([]Team, error)
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]Scored, error)
	// SearchByText matches query against name, country or venue.
	SearchByText(ctx context.Context, query string, limit int) ([]Team, error)
}
