package season

import (
	"context"
	"time"
)

// Repository describes season persistence needs from use cases.
// Reads populate CompetitionName from the owning competition.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID int64) (Season, bool, error)
	// ListByCompetition returns seasons ordered by start date, newest first.
	ListByCompetition(ctx context.Context, competitionID string) ([]Season, error)
	// ListWithin returns seasons fully inside [start, end], newest first.
	ListWithin(ctx context.Context, start, end time.Time) ([]Season, error)
	// Upsert inserts or refreshes the season keyed by external id.
	Upsert(ctx context.Context, s Season) (Season, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}
