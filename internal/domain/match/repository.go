package match

import "context"

// Repository describes match persistence needs from use cases.
// Reads resolve team names through the teams table.
type Repository interface {
	// List returns matches ordered by date ascending.
	List(ctx context.Context, filter Filter) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Create(ctx context.Context, m Match) error
	// ListEvents returns events ordered by minute.
	ListEvents(ctx context.Context, matchID string) ([]Event, error)
}
