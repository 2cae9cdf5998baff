package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type enqueuedJob struct {
	path    string
	payload any
	delay   time.Duration
	dedupID string
}

type recordingJobQueue struct {
	jobs []enqueuedJob
	err  error
}

func (q *recordingJobQueue) Enqueue(_ context.Context, path string, payload any, delay time.Duration, dedupID string) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, enqueuedJob{path: path, payload: payload, delay: delay, dedupID: dedupID})
	return nil
}

type countingRequester struct {
	codes   []string
	refresh []bool
}

func (r *countingRequester) RequestCompetitionSync(_ context.Context, code string, refresh bool) (string, error) {
	r.codes = append(r.codes, code)
	r.refresh = append(r.refresh, refresh)
	return "corr-" + code, nil
}

func TestDedupKey_UsesQStashSafeFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.February, 25, 4, 25, 42, 0, time.UTC)
	got := dedupKey("competition-sync", "eng:pl/1 2025", at, 5*time.Minute)

	if strings.Contains(got, ":") {
		t.Fatalf("dedup key must not contain colon, got=%q", got)
	}

	want := "competition-sync-eng-pl-1-2025-20260225T042500Z"
	if got != want {
		t.Fatalf("unexpected dedup key: got=%q want=%q", got, want)
	}
}

func TestSanitizeDedupSegment_EmptyFallback(t *testing.T) {
	t.Parallel()

	if got := sanitizeDedupSegment(" \t "); got != "unknown" {
		t.Fatalf("unexpected sanitize fallback: got=%q want=%q", got, "unknown")
	}
}

func TestCompetitionSyncScheduler_NormalizesCodes(t *testing.T) {
	t.Parallel()

	queue := &recordingJobQueue{}
	scheduler := NewCompetitionSyncScheduler(&countingRequester{}, queue, CompetitionSyncSchedulerConfig{
		Codes: []string{"pl", " PL ", "", "cl"},
	}, nil)

	result, err := scheduler.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if result.QueuedCount != 2 {
		t.Fatalf("expected 2 queued jobs, got %d", result.QueuedCount)
	}
	if queue.jobs[0].path != CompetitionSyncJobPath || queue.jobs[0].delay != 0 {
		t.Fatalf("unexpected bootstrap job %+v", queue.jobs[0])
	}
}

func TestCompetitionSyncScheduler_RunJobRequestsAndReschedules(t *testing.T) {
	t.Parallel()

	queue := &recordingJobQueue{}
	requester := &countingRequester{}
	scheduler := NewCompetitionSyncScheduler(requester, queue, CompetitionSyncSchedulerConfig{
		Codes:    []string{"PL", "CL"},
		Interval: time.Hour,
	}, nil)
	scheduler.now = fixedClock(time.Date(2026, time.March, 1, 10, 15, 0, 0, time.UTC))

	result, err := scheduler.RunJob(context.Background(), CompetitionSyncJobInput{Code: "cl"})
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	if result.RequestedCount != 1 || len(requester.codes) != 1 || requester.codes[0] != "CL" {
		t.Fatalf("expected one CL request, got %v", requester.codes)
	}
	if !requester.refresh[0] {
		t.Fatalf("scheduled sync must bypass the provider cache")
	}
	if len(queue.jobs) != 1 || queue.jobs[0].delay != time.Hour {
		t.Fatalf("expected next run after one hour, got %+v", queue.jobs)
	}
	if queue.jobs[0].dedupID != "competition-sync-CL-20260301T110000Z" {
		t.Fatalf("unexpected dedup id %q", queue.jobs[0].dedupID)
	}
}

func TestCompetitionSyncScheduler_RunJobUnknownCode(t *testing.T) {
	t.Parallel()

	scheduler := NewCompetitionSyncScheduler(&countingRequester{}, nil, CompetitionSyncSchedulerConfig{Codes: []string{"PL"}}, nil)
	if _, err := scheduler.RunJob(context.Background(), CompetitionSyncJobInput{Code: "SA"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompetitionSyncScheduler_EnqueueFailure(t *testing.T) {
	t.Parallel()

	queue := &recordingJobQueue{err: errors.New("qstash down")}
	scheduler := NewCompetitionSyncScheduler(&countingRequester{}, queue, CompetitionSyncSchedulerConfig{Codes: []string{"PL"}}, nil)
	if _, err := scheduler.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected enqueue failure to surface")
	}
}
