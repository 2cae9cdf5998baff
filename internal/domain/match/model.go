package match

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "Scheduled"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusPostponed  Status = "Postponed"
	StatusCancelled  Status = "Cancelled"
)

var allStatuses = []Status{
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
	StatusPostponed,
	StatusCancelled,
}

// ParseStatus matches a status name case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	value := strings.TrimSpace(raw)
	for _, s := range allStatuses {
		if strings.EqualFold(string(s), value) {
			return s, true
		}
	}
	return "", false
}

// Match is a fixture between two teams. HomeTeamName and AwayTeamName are read-side only.
type Match struct {
	ID           string
	HomeTeamID   string
	HomeTeamName string
	AwayTeamID   string
	AwayTeamName string
	MatchDate    time.Time
	Stadium      string
	HomeScore    *int
	AwayScore    *int
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return fmt.Errorf("match home and away team ids are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match home and away teams must differ")
	}
	if m.MatchDate.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if _, ok := ParseStatus(string(m.Status)); !ok {
		return fmt.Errorf("invalid match status: %s", m.Status)
	}
	return nil
}

// Describe renders "Home vs Away on yyyy-MM-dd", the context fed to the prediction agent.
func (m Match) Describe() string {
	return fmt.Sprintf("Match: %s vs %s on %s", nameOrUnknown(m.HomeTeamName), nameOrUnknown(m.AwayTeamName), m.MatchDate.UTC().Format("2006-01-02"))
}

func nameOrUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown"
	}
	return name
}

// Event is something that happened during a match (goal, card, substitution).
type Event struct {
	ID          string
	MatchID     string
	PlayerID    *string
	PlayerName  string
	EventType   string
	Minute      int
	Description string
	CreatedAt   time.Time
}

// Filter narrows match listings; zero values are ignored.
type Filter struct {
	From   time.Time
	To     time.Time
	Status Status
	Limit  int
}
