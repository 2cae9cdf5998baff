package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const CompetitionSyncJobPath = "/v1/internal/jobs/competition-sync"

type CompetitionSyncRequester interface {
	RequestCompetitionSync(ctx context.Context, code string, refresh bool) (string, error)
}

type CompetitionSyncSchedulerConfig struct {
	Codes    []string
	Interval time.Duration
}

type CompetitionSyncJobInput struct {
	Code string
}

type CompetitionSyncJobResult struct {
	Mode             string   `json:"mode"`
	CompetitionCount int      `json:"competition_count"`
	RequestedCount   int      `json:"requested_count"`
	QueuedCount      int      `json:"queued_count"`
	QueuedOperations []string `json:"queued_operations"`
}

// CompetitionSyncScheduler keeps configured competitions fresh. With a delayed
// job queue every run enqueues its own successor; without one, Run polls on a ticker.
type CompetitionSyncScheduler struct {
	requester CompetitionSyncRequester
	queue     JobQueue
	cfg       CompetitionSyncSchedulerConfig
	logger    *logging.Logger
	now       func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewCompetitionSyncScheduler(
	requester CompetitionSyncRequester,
	queue JobQueue,
	cfg CompetitionSyncSchedulerConfig,
	logger *logging.Logger,
) *CompetitionSyncScheduler {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	codes := make([]string, 0, len(cfg.Codes))
	seen := make(map[string]struct{}, len(cfg.Codes))
	for _, code := range cfg.Codes {
		code = competition.NormalizeCode(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	cfg.Codes = codes

	return &CompetitionSyncScheduler{
		requester: requester,
		queue:     queue,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Bootstrap enqueues an immediate sync job per configured competition.
func (s *CompetitionSyncScheduler) Bootstrap(ctx context.Context) (CompetitionSyncJobResult, error) {
	now := s.now().UTC()
	result := CompetitionSyncJobResult{
		Mode:             "bootstrap",
		CompetitionCount: len(s.cfg.Codes),
		QueuedOperations: make([]string, 0, len(s.cfg.Codes)),
	}
	for _, code := range s.cfg.Codes {
		if err := s.enqueue(ctx, code, 0, now); err != nil {
			return CompetitionSyncJobResult{}, err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, "competition-sync:"+code)
	}
	return result, nil
}

// RunJob handles one delivered job: it requests the sync and schedules the next one.
func (s *CompetitionSyncScheduler) RunJob(ctx context.Context, input CompetitionSyncJobInput) (CompetitionSyncJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionSyncScheduler.RunJob")
	defer span.End()

	codes, err := s.pickCodes(input.Code)
	if err != nil {
		return CompetitionSyncJobResult{}, err
	}

	now := s.now().UTC()
	result := CompetitionSyncJobResult{
		Mode:             "job",
		CompetitionCount: len(codes),
		QueuedOperations: make([]string, 0, len(codes)),
	}
	for _, code := range codes {
		if _, err := s.requester.RequestCompetitionSync(ctx, code, true); err != nil {
			return CompetitionSyncJobResult{}, fmt.Errorf("request competition sync code=%s: %w", code, err)
		}
		result.RequestedCount++

		if err := s.enqueue(ctx, code, s.cfg.Interval, now); err != nil {
			return CompetitionSyncJobResult{}, err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, "competition-sync:"+code)
	}
	return result, nil
}

// Run requests a sync of every configured competition now and then every
// Interval until ctx is cancelled.
func (s *CompetitionSyncScheduler) Run(ctx context.Context) {
	if len(s.cfg.Codes) == 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.requestAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.requestAll(ctx)
		}
	}
}

func (s *CompetitionSyncScheduler) requestAll(ctx context.Context) {
	for _, code := range s.cfg.Codes {
		correlationID, err := s.requester.RequestCompetitionSync(ctx, code, true)
		if err != nil {
			s.logger.WarnContext(ctx, "scheduled competition sync request failed", "code", code, "error", err)
			continue
		}
		s.logger.DebugContext(ctx, "scheduled competition sync requested", "code", code, "correlation_id", correlationID)
	}
}

func (s *CompetitionSyncScheduler) pickCodes(code string) ([]string, error) {
	code = competition.NormalizeCode(code)
	if code == "" {
		return s.cfg.Codes, nil
	}
	for _, item := range s.cfg.Codes {
		if item == code {
			return []string{code}, nil
		}
	}
	return nil, fmt.Errorf("%w: competition %s is not scheduled", ErrNotFound, code)
}

func (s *CompetitionSyncScheduler) enqueue(ctx context.Context, code string, delay time.Duration, now time.Time) error {
	dedupID := dedupKey("competition-sync", code, now.Add(delay), s.cfg.Interval)
	payload := map[string]any{
		"code":        code,
		"dispatch_id": dedupID,
	}
	if err := s.queue.Enqueue(ctx, CompetitionSyncJobPath, payload, delay, dedupID); err != nil {
		s.logger.WarnContext(ctx, "enqueue competition sync failed",
			"dispatch_id", dedupID,
			"code", code,
			"error", err,
		)
		return fmt.Errorf("enqueue competition-sync code=%s: %w", code, err)
	}
	s.logger.InfoContext(ctx, "competition sync enqueued",
		"dispatch_id", dedupID,
		"code", code,
		"delay", delay.String(),
	)
	return nil
}

func dedupKey(prefix, key string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	key = sanitizeDedupSegment(key)
	return prefix + "-" + key + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
