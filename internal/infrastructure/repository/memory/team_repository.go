package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = item
	}
	return &TeamRepository{teams: byID}
}

// List filters by name (contains) and country (equals), ordered by name.
func (r *TeamRepository) List(_ context.Context, filter team.Filter) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, item := range r.sortedLocked() {
		if filter.Name != "" && !containsFold(item.Name, filter.Name) {
			continue
		}
		if filter.Country != "" && !strings.EqualFold(item.Country, strings.TrimSpace(filter.Country)) {
			continue
		}
		out = append(out, item)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.teams[t.ID]; exists {
		return fmt.Errorf("team %s already exists", t.ID)
	}
	t.Embedding = cloneVector(t.Embedding)
	r.teams[t.ID] = t
	return nil
}

func (r *TeamRepository) UpdateEmbedding(_ context.Context, teamID string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}
	item.Embedding = cloneVector(embedding)
	r.teams[teamID] = item
	return nil
}

func (r *TeamRepository) ListMissingEmbedding(_ context.Context, limit int) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, item := range r.sortedLocked() {
		if len(item.Embedding) > 0 {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *TeamRepository) SearchByEmbedding(_ context.Context, embedding []float32, limit int) ([]team.Scored, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.sortedLocked()
	vectors := make([][]float32, len(items))
	for i, item := range items {
		vectors[i] = item.Embedding
	}
	ranked := rankBySimilarity(embedding, vectors, limit)
	out := make([]team.Scored, 0, len(ranked))
	for _, hit := range ranked {
		out = append(out, team.Scored{Team: items[hit.index], Similarity: hit.similarity})
	}
	return out, nil
}

func (r *TeamRepository) SearchByText(_ context.Context, query string, limit int) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, item := range r.sortedLocked() {
		if containsFold(item.Name, query) || containsFold(item.Country, query) || containsFold(item.Venue, query) {
			out = append(out, item)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *TeamRepository) sortedLocked() []team.Team {
	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
