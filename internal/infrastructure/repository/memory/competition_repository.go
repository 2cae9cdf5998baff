package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
)

type CompetitionRepository struct {
	mu     sync.RWMutex
	byCode map[string]competition.Competition
}

func NewCompetitionRepository() *CompetitionRepository {
	return &CompetitionRepository{byCode: make(map[string]competition.Competition)}
}

func (r *CompetitionRepository) GetByCode(_ context.Context, code string) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byCode[competition.NormalizeCode(code)]
	return item, ok, nil
}

// Upsert keeps the stored id and creation time of an existing code.
func (r *CompetitionRepository) Upsert(_ context.Context, c competition.Competition) (competition.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.Code = competition.NormalizeCode(c.Code)
	if existing, ok := r.byCode[c.Code]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		if c.Embedding == nil {
			c.Embedding = existing.Embedding
		}
	}
	c.Embedding = cloneVector(c.Embedding)
	r.byCode[c.Code] = c
	return c, nil
}

func (r *CompetitionRepository) UpdateEmbedding(_ context.Context, id string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, item := range r.byCode {
		if item.ID == id {
			item.Embedding = cloneVector(embedding)
			r.byCode[code] = item
			return nil
		}
	}
	return nil
}

func (r *CompetitionRepository) SearchByEmbedding(_ context.Context, embedding []float32, limit int) ([]competition.Scored, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.sortedLocked()
	vectors := make([][]float32, len(items))
	for i, item := range items {
		vectors[i] = item.Embedding
	}
	ranked := rankBySimilarity(embedding, vectors, limit)
	out := make([]competition.Scored, 0, len(ranked))
	for _, hit := range ranked {
		out = append(out, competition.Scored{Competition: items[hit.index], Similarity: hit.similarity})
	}
	return out, nil
}

func (r *CompetitionRepository) SearchByText(_ context.Context, query string, limit int) ([]competition.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]competition.Competition, 0)
	for _, item := range r.sortedLocked() {
		if containsFold(item.Name, query) || containsFold(item.AreaName, query) || containsFold(item.Code, query) {
			out = append(out, item)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *CompetitionRepository) sortedLocked() []competition.Competition {
	out := make([]competition.Competition, 0, len(r.byCode))
	for _, item := range r.byCode {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
