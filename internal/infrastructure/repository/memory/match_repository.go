package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
	events  map[string][]match.Event
	teams   *TeamRepository
	players *PlayerRepository
}

func NewMatchRepository(matches []match.Match, events []match.Event, teams *TeamRepository, players *PlayerRepository) *MatchRepository {
	r := &MatchRepository{
		matches: make(map[string]match.Match, len(matches)),
		events:  make(map[string][]match.Event),
		teams:   teams,
		players: players,
	}
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	for _, e := range events {
		r.events[e.MatchID] = append(r.events[e.MatchID], e)
	}
	return r
}

// List returns matches inside [From, To] ordered by date.
func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	r.mu.RLock()
	out := make([]match.Match, 0)
	for _, m := range r.matches {
		if !filter.From.IsZero() && m.MatchDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && m.MatchDate.After(filter.To) {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].MatchDate.Before(out[j].MatchDate) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	for i := range out {
		out[i] = r.withTeamNames(ctx, out[i])
	}
	return out, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	m, ok := r.matches[matchID]
	r.mu.RUnlock()
	if !ok {
		return match.Match{}, false, nil
	}
	return r.withTeamNames(ctx, m), true, nil
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matches[m.ID]; exists {
		return fmt.Errorf("match %s already exists", m.ID)
	}
	m.HomeTeamName, m.AwayTeamName = "", ""
	r.matches[m.ID] = m
	return nil
}

// ListEvents returns the match's events ordered by minute.
func (r *MatchRepository) ListEvents(ctx context.Context, matchID string) ([]match.Event, error) {
	r.mu.RLock()
	out := append([]match.Event(nil), r.events[matchID]...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	for i := range out {
		if out[i].PlayerID == nil || r.players == nil {
			continue
		}
		if p, ok, _ := r.players.GetByID(ctx, *out[i].PlayerID); ok {
			out[i].PlayerName = p.Name
		}
	}
	return out, nil
}

func (r *MatchRepository) withTeamNames(ctx context.Context, m match.Match) match.Match {
	if r.teams == nil {
		return m
	}
	if home, ok, _ := r.teams.GetByID(ctx, m.HomeTeamID); ok {
		m.HomeTeamName = home.Name
	}
	if away, ok, _ := r.teams.GetByID(ctx, m.AwayTeamID); ok {
		m.AwayTeamName = away.Name
	}
	return m
}
