package workflow

import "context"

// Repository stores workflow events for visualization.
type Repository interface {
	Append(ctx context.Context, event Event) error
	// ListByWorkflow returns events of one workflow in occurrence order.
	ListByWorkflow(ctx context.Context, workflowID string) ([]Event, error)
}
