package predictionsaga

import (
	"errors"
	"fmt"
	"time"
)

// State is the lifecycle position of one prediction workflow.
type State string

const (
	// StateInitial is implicit: no instance exists yet for the correlation id.
	StateInitial   State = "Initial"
	StateRequested State = "Requested"
	StateCompleted State = "Completed"
	StateFailed    State = "Failed"
)

// Final reports whether the instance is finalized; finalized instances never change again.
func (s State) Final() bool {
	return s == StateCompleted || s == StateFailed
}

var (
	ErrAlreadyExists     = errors.New("saga instance already exists")
	ErrVersionConflict   = errors.New("saga instance was modified concurrently")
	ErrInvalidTransition = errors.New("invalid saga transition")
)

// Instance is the per-correlation state record of the match prediction workflow.
type Instance struct {
	CorrelationID     string
	CurrentState      State
	MatchID           string
	AdditionalContext string
	PredictionID      string
	Confidence        *float32
	RequestedAt       time.Time
	CompletedAt       *time.Time
	ErrorMessage      string
	RetryCount        int
	Version           int64
	UpdatedAt         time.Time
}

// Request carries the fields of a MatchPredictionRequested event.
type Request struct {
	CorrelationID     string
	MatchID           string
	AdditionalContext string
	RequestedAt       time.Time
}

// Completion carries the fields of a MatchPredictionCompleted event.
type Completion struct {
	CorrelationID string
	PredictionID  string
	Success       bool
	ErrorMessage  string
	Confidence    *float32
	CompletedAt   time.Time
}

// Outcome says what a completion did to an instance.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
)

// Start builds the instance created by the first MatchPredictionRequested for a correlation id.
func Start(req Request, now time.Time) (Instance, error) {
	if req.CorrelationID == "" {
		return Instance{}, fmt.Errorf("%w: correlation id is required", ErrInvalidTransition)
	}
	if req.MatchID == "" {
		return Instance{}, fmt.Errorf("%w: match id is required", ErrInvalidTransition)
	}
	requestedAt := req.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = now
	}
	return Instance{
		CorrelationID:     req.CorrelationID,
		CurrentState:      StateRequested,
		MatchID:           req.MatchID,
		AdditionalContext: req.AdditionalContext,
		RequestedAt:       requestedAt.UTC(),
		RetryCount:        0,
		Version:           1,
		UpdatedAt:         now.UTC(),
	}, nil
}

// Complete applies a completion to a Requested instance. Completions for an
// already finalized instance are reported as duplicates and leave it untouched.
func (i Instance) Complete(c Completion, now time.Time) (Instance, Outcome, error) {
	if c.CorrelationID != "" && c.CorrelationID != i.CorrelationID {
		return i, "", fmt.Errorf("%w: completion for %s applied to %s", ErrInvalidTransition, c.CorrelationID, i.CorrelationID)
	}
	if i.CurrentState.Final() {
		return i, OutcomeDuplicate, nil
	}
	if i.CurrentState != StateRequested {
		return i, "", fmt.Errorf("%w: cannot complete from %s", ErrInvalidTransition, i.CurrentState)
	}

	completedAt := c.CompletedAt
	if completedAt.IsZero() {
		completedAt = now
	}
	completedAt = completedAt.UTC()

	next := i
	next.PredictionID = c.PredictionID
	next.Confidence = c.Confidence
	next.CompletedAt = &completedAt
	next.UpdatedAt = now.UTC()
	next.Version = i.Version + 1
	if c.Success {
		next.CurrentState = StateCompleted
		next.ErrorMessage = ""
	} else {
		next.CurrentState = StateFailed
		next.ErrorMessage = c.ErrorMessage
	}
	return next, OutcomeApplied, nil
}

// Duration is the time from request to completion, or zero while running.
func (i Instance) Duration() time.Duration {
	if i.CompletedAt == nil {
		return 0
	}
	return i.CompletedAt.Sub(i.RequestedAt)
}
