package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
	teams   *TeamRepository
}

// NewPlayerRepository resolves team names through teams when it is set.
func NewPlayerRepository(players []player.Player, teams *TeamRepository) *PlayerRepository {
	byID := make(map[string]player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return &PlayerRepository{players: byID, teams: teams}
}

func (r *PlayerRepository) List(ctx context.Context, teamID string) ([]player.Player, error) {
	r.mu.RLock()
	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		if teamID != "" && (p.TeamID == nil || *p.TeamID != teamID) {
			continue
		}
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	for i := range out {
		out[i].TeamName = r.teamName(ctx, out[i].TeamID)
	}
	return out, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	p, ok := r.players[playerID]
	r.mu.RUnlock()
	if !ok {
		return player.Player{}, false, nil
	}
	p.TeamName = r.teamName(ctx, p.TeamID)
	return p, true, nil
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[p.ID]; exists {
		return fmt.Errorf("player %s already exists", p.ID)
	}
	r.players[p.ID] = p
	return nil
}

func (r *PlayerRepository) teamName(ctx context.Context, teamID *string) string {
	if teamID == nil || r.teams == nil {
		return ""
	}
	item, ok, _ := r.teams.GetByID(ctx, *teamID)
	if !ok {
		return ""
	}
	return item.Name
}
