package player

import (
	"fmt"
	"strings"
	"time"
)

// Player is an athlete optionally attached to a team.
type Player struct {
	ID           string
	Name         string
	Position     string
	JerseyNumber *int
	DateOfBirth  *time.Time
	TeamID       *string
	TeamName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("player name must be at most 200 characters")
	}
	if p.JerseyNumber != nil && (*p.JerseyNumber < 0 || *p.JerseyNumber > 99) {
		return fmt.Errorf("player jersey number must be between 0 and 99")
	}
	return nil
}
