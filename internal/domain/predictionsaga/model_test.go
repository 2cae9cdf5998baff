package predictionsaga

import (
	"errors"
	"testing"
	"time"
)

func float32Ptr(v float32) *float32 { return &v }

func TestStart_CreatesRequestedInstance(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	inst, err := Start(Request{CorrelationID: "c1", MatchID: "m1", AdditionalContext: "derby"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.CurrentState != StateRequested {
		t.Fatalf("expected Requested, got %s", inst.CurrentState)
	}
	if inst.RetryCount != 0 || inst.Version != 1 {
		t.Fatalf("unexpected retry/version: %d/%d", inst.RetryCount, inst.Version)
	}
	if !inst.RequestedAt.Equal(now) {
		t.Fatalf("expected requested at to default to now, got %v", inst.RequestedAt)
	}
}

func TestStart_RequiresMatchID(t *testing.T) {
	t.Parallel()

	if _, err := Start(Request{CorrelationID: "c1"}, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestComplete_SuccessMovesToCompleted(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	inst, _ := Start(Request{CorrelationID: "c1", MatchID: "m1"}, now)

	done := now.Add(3 * time.Second)
	next, outcome, err := inst.Complete(Completion{
		CorrelationID: "c1",
		PredictionID:  "p1",
		Success:       true,
		Confidence:    float32Ptr(0.72),
		CompletedAt:   done,
	}, done)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeApplied || next.CurrentState != StateCompleted {
		t.Fatalf("expected applied/Completed, got %s/%s", outcome, next.CurrentState)
	}
	if next.PredictionID != "p1" || next.Confidence == nil || *next.Confidence != 0.72 {
		t.Fatalf("unexpected completion fields: %+v", next)
	}
	if next.Version != 2 {
		t.Fatalf("expected version bump to 2, got %d", next.Version)
	}
	if next.Duration() != 3*time.Second {
		t.Fatalf("expected 3s duration, got %s", next.Duration())
	}
}

func TestComplete_FailureMovesToFailedWithMessage(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	inst, _ := Start(Request{CorrelationID: "c1", MatchID: "m1"}, now)

	next, _, err := inst.Complete(Completion{CorrelationID: "c1", Success: false, ErrorMessage: "match not found"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.CurrentState != StateFailed || next.ErrorMessage != "match not found" {
		t.Fatalf("unexpected failed instance: %+v", next)
	}
	if next.CompletedAt == nil {
		t.Fatalf("expected completed at to be set on failure")
	}
}

func TestComplete_DuplicateIsIgnored(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	inst, _ := Start(Request{CorrelationID: "c1", MatchID: "m1"}, now)
	done, _, _ := inst.Complete(Completion{CorrelationID: "c1", PredictionID: "p1", Success: true}, now)

	again, outcome, err := done.Complete(Completion{CorrelationID: "c1", Success: false, ErrorMessage: "late failure"}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeDuplicate {
		t.Fatalf("expected duplicate outcome, got %s", outcome)
	}
	if again.CurrentState != StateCompleted || again.ErrorMessage != "" || again.Version != done.Version {
		t.Fatalf("expected finalized instance to stay untouched, got %+v", again)
	}
}

func TestComplete_RejectsForeignCorrelation(t *testing.T) {
	t.Parallel()

	inst, _ := Start(Request{CorrelationID: "c1", MatchID: "m1"}, time.Now())
	if _, _, err := inst.Complete(Completion{CorrelationID: "c2", Success: true}, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
