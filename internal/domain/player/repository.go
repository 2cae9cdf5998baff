package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	// List returns players ordered by name; an empty teamID lists everyone.
	List(ctx context.Context, teamID string) ([]Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	Create(ctx context.Context, p Player) error
}
