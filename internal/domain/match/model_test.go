package match

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	got, ok := ParseStatus(" inprogress ")
	if !ok || got != StatusInProgress {
		t.Fatalf("expected InProgress, got %q ok=%v", got, ok)
	}
	if _, ok := ParseStatus("abandoned"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestMatchValidate_RejectsSameTeams(t *testing.T) {
	t.Parallel()

	m := Match{
		ID:         "m1",
		HomeTeamID: "t1",
		AwayTeamID: "t1",
		MatchDate:  time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC),
		Status:     StatusScheduled,
	}
	if err := m.Validate(); err == nil {
		t.Fatalf("expected error for identical home and away team")
	}
}

func TestMatchDescribe(t *testing.T) {
	t.Parallel()

	m := Match{
		HomeTeamName: "Arsenal FC",
		MatchDate:    time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC),
	}
	if got, want := m.Describe(), "Match: Arsenal FC vs Unknown on 2026-10-18"; got != want {
		t.Fatalf("unexpected description:\nwant: %s\ngot:  %s", want, got)
	}
}
