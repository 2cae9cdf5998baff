package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
)

type SeasonRepository struct {
	mu         sync.RWMutex
	byExternal map[int64]season.Season
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{byExternal: make(map[int64]season.Season)}
}

func (r *SeasonRepository) GetByExternalID(_ context.Context, externalID int64) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byExternal[externalID]
	return item, ok, nil
}

// ListByCompetition returns the competition's seasons, latest start first.
func (r *SeasonRepository) ListByCompetition(_ context.Context, competitionID string) ([]season.Season, error) {
	return r.filter(func(s season.Season) bool { return s.CompetitionID == competitionID }), nil
}

// ListWithin returns seasons fully inside [start, end].
func (r *SeasonRepository) ListWithin(_ context.Context, start, end time.Time) ([]season.Season, error) {
	return r.filter(func(s season.Season) bool {
		return !s.StartDate.Before(start) && !s.EndDate.After(end)
	}), nil
}

func (r *SeasonRepository) filter(keep func(season.Season) bool) []season.Season {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]season.Season, 0)
	for _, item := range r.byExternal {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

func (r *SeasonRepository) Upsert(_ context.Context, s season.Season) (season.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byExternal[s.ExternalID]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		if s.Embedding == nil {
			s.Embedding = existing.Embedding
		}
	}
	s.Embedding = cloneVector(s.Embedding)
	r.byExternal[s.ExternalID] = s
	return s, nil
}

func (r *SeasonRepository) UpdateEmbedding(_ context.Context, id string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.byExternal {
		if item.ID == id {
			item.Embedding = cloneVector(embedding)
			r.byExternal[key] = item
			return nil
		}
	}
	return nil
}
