package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

func competitionDescription(c competition.Competition) string {
	return fmt.Sprintf("Football competition: %s in %s, type: %s", c.Name, c.AreaName, c.Type)
}

func seasonDescription(competitionName string, s season.Season) string {
	winner := s.WinnerName
	if winner == "" {
		winner = "TBD"
	}
	return fmt.Sprintf("%s season from %s to %s, won by %s", competitionName, s.StartDateString(), s.EndDateString(), winner)
}

func teamDescription(t team.Team) string {
	parts := []string{"Football team: " + t.Name}
	if t.Country != "" {
		parts = append(parts, "from "+t.Country)
	}
	if t.League != "" {
		parts = append(parts, "playing in "+t.League)
	}
	if t.Venue != "" {
		parts = append(parts, "home venue "+t.Venue)
	}
	return strings.Join(parts, ", ")
}

// embedOrNil returns nil when no generator is configured or embedding fails;
// callers store rows without a vector in that case.
func embedOrNil(ctx context.Context, gen EmbeddingGenerator, logger *logging.Logger, text string) []float32 {
	if gen == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	vector, err := gen.Embed(ctx, text)
	if err != nil {
		logger.WarnContext(ctx, "generate embedding failed", "embedder", gen.Name(), "error", err)
		return nil
	}
	return vector
}
