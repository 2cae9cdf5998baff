package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	basecache "github.com/riskibarqy/dotmatchlens/internal/platform/cache"
)

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context, filter team.Filter) ([]team.Team, error) {
	key := "team:list:" + strings.ToLower(filter.Name) + ":" + strings.ToLower(filter.Country) + ":" + strconv.Itoa(filter.Limit)
	return basecache.LoadSlice(ctx, r.cache, key, func(ctx context.Context) ([]team.Team, error) {
		return r.next.List(ctx, filter)
	})
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	return basecache.LoadLookup(ctx, r.cache, "team:id:"+teamID, func(ctx context.Context) (team.Team, bool, error) {
		return r.next.GetByID(ctx, teamID)
	})
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	if err := r.next.Create(ctx, t); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "team:list:")
	r.cache.Delete(ctx, "team:id:"+t.ID)
	return nil
}

func (r *TeamRepository) UpdateEmbedding(ctx context.Context, teamID string, embedding []float32) error {
	if err := r.next.UpdateEmbedding(ctx, teamID, embedding); err != nil {
		return err
	}
	r.cache.Delete(ctx, "team:id:"+teamID)
	r.cache.DeletePrefix(ctx, "team:list:")
	return nil
}

func (r *TeamRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]team.Team, error) {
	return r.next.ListMissingEmbedding(ctx, limit)
}

func (r *TeamRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]team.Scored, error) {
	return r.next.SearchByEmbedding(ctx, embedding, limit)
}

func (r *TeamRepository) SearchByText(ctx context.Context, query string, limit int) ([]team.Team, error) {
	return r.next.SearchByText(ctx, query, limit)
}

type CompetitionRepository struct {
	next  competition.Repository
	cache *basecache.Store
}

func NewCompetitionRepository(next competition.Repository, cache *basecache.Store) *CompetitionRepository {
	return &CompetitionRepository{next: next, cache: cache}
}

func competitionCodeKey(code string) string {
	return "competition:code:" + competition.NormalizeCode(code)
}

func (r *CompetitionRepository) GetByCode(ctx context.Context, code string) (competition.Competition, bool, error) {
	return basecache.LoadLookup(ctx, r.cache, competitionCodeKey(code), func(ctx context.Context) (competition.Competition, bool, error) {
		return r.next.GetByCode(ctx, code)
	})
}

func (r *CompetitionRepository) Upsert(ctx context.Context, c competition.Competition) (competition.Competition, error) {
	stored, err := r.next.Upsert(ctx, c)
	if err != nil {
		return competition.Competition{}, err
	}
	r.cache.Delete(ctx, competitionCodeKey(stored.Code))
	return stored, nil
}

// UpdateEmbedding only knows the id, so every cached code is dropped.
func (r *CompetitionRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	if err := r.next.UpdateEmbedding(ctx, id, embedding); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "competition:code:")
	return nil
}

func (r *CompetitionRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]competition.Scored, error) {
	return r.next.SearchByEmbedding(ctx, embedding, limit)
}

func (r *CompetitionRepository) SearchByText(ctx context.Context, query string, limit int) ([]competition.Competition, error) {
	return r.next.SearchByText(ctx, query, limit)
}

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) List(ctx context.Context, teamID string) ([]player.Player, error) {
	return basecache.LoadSlice(ctx, r.cache, "player:list:"+teamID, func(ctx context.Context) ([]player.Player, error) {
		return r.next.List(ctx, teamID)
	})
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	return r.next.GetByID(ctx, playerID)
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "player:list:")
	return nil
}

type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	return r.next.List(ctx, filter)
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	return basecache.LoadLookup(ctx, r.cache, "match:id:"+matchID, func(ctx context.Context) (match.Match, bool, error) {
		return r.next.GetByID(ctx, matchID)
	})
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	if err := r.next.Create(ctx, m); err != nil {
		return err
	}
	r.cache.Delete(ctx, "match:id:"+m.ID)
	return nil
}

func (r *MatchRepository) ListEvents(ctx context.Context, matchID string) ([]match.Event, error) {
	return basecache.LoadSlice(ctx, r.cache, "match:events:"+matchID, func(ctx context.Context) ([]match.Event, error) {
		return r.next.ListEvents(ctx, matchID)
	})
}
