package predictionsaga

import "context"

// Repository persists saga instances keyed by correlation id.
type Repository interface {
	Get(ctx context.Context, correlationID string) (Instance, bool, error)
	// Insert fails with ErrAlreadyExists when the correlation id is taken.
	Insert(ctx context.Context, inst Instance) error
	// Update stores inst only if the stored version equals inst.Version-1,
	// otherwise it fails with ErrVersionConflict.
	Update(ctx context.Context, inst Instance) error
	// ListByState returns instances in state, oldest request first.
	ListByState(ctx context.Context, state State, limit int) ([]Instance, error)
}
