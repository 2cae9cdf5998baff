package footballdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/dotmatchlens/internal/platform/cache"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
	"golang.org/x/sync/singleflight"
)

const (
	competitionKeyPrefix = "football:competition:"
	DefaultCacheTTL      = 30 * 24 * time.Hour
)

// CachedCompetitionSource serves competitions from a cache backend and falls
// through to the origin on a miss. Origin errors are never cached.
type CachedCompetitionSource struct {
	origin  usecase.CompetitionSource
	backend cache.Backend
	ttl     time.Duration
	logger  *logging.Logger
	flight  singleflight.Group
}

func NewCachedCompetitionSource(origin usecase.CompetitionSource, backend cache.Backend, ttl time.Duration, logger *logging.Logger) *CachedCompetitionSource {
	if backend == nil {
		backend = cache.NewMemoryBackend(nil)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedCompetitionSource{
		origin:  origin,
		backend: backend,
		ttl:     ttl,
		logger:  logger,
	}
}

func competitionKey(code string) string {
	return competitionKeyPrefix + strings.ToUpper(strings.TrimSpace(code))
}

func (s *CachedCompetitionSource) GetCompetition(ctx context.Context, code string) (usecase.ExternalCompetition, error) {
	if strings.TrimSpace(code) == "" {
		return usecase.ExternalCompetition{}, fmt.Errorf("%w: competition code is required", usecase.ErrInvalidInput)
	}
	key := competitionKey(code)

	if cached, ok := s.lookup(ctx, key); ok {
		return cached, nil
	}

	// The load is shared by every waiter on key, so it must outlive the
	// caller that happened to start it.
	loadCtx := context.WithoutCancel(ctx)
	out, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.lookup(loadCtx, key); ok {
			return cached, nil
		}

		loaded, err := s.origin.GetCompetition(loadCtx, code)
		if err != nil {
			return nil, err
		}
		s.store(loadCtx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return usecase.ExternalCompetition{}, err
	}
	return out.(usecase.ExternalCompetition), nil
}

// InvalidateCompetition drops the cached payload for code.
func (s *CachedCompetitionSource) InvalidateCompetition(ctx context.Context, code string) error {
	if err := s.backend.Delete(ctx, competitionKey(code)); err != nil {
		return fmt.Errorf("invalidate competition cache: %w", err)
	}
	return nil
}

// lookup treats backend and decode failures as a miss.
func (s *CachedCompetitionSource) lookup(ctx context.Context, key string) (usecase.ExternalCompetition, bool) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "competition cache read failed", "key", key, "error", err)
		return usecase.ExternalCompetition{}, false
	}
	if !ok {
		return usecase.ExternalCompetition{}, false
	}

	var out usecase.ExternalCompetition
	if err := sonic.Unmarshal(raw, &out); err != nil {
		s.logger.WarnContext(ctx, "competition cache entry is corrupt", "key", key, "error", err)
		return usecase.ExternalCompetition{}, false
	}
	return out, true
}

func (s *CachedCompetitionSource) store(ctx context.Context, key string, value usecase.ExternalCompetition) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		s.logger.WarnContext(ctx, "encode competition cache entry failed", "key", key, "error", err)
		return
	}
	if err := s.backend.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "competition cache write failed", "key", key, "error", err)
	}
}
