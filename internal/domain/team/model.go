package team

import (
	"fmt"
	"strings"
	"time"
)

// Team is a football club, either created locally or ingested from the provider.
type Team struct {
	ID         string
	ExternalID *int64
	Name       string
	ShortName  string
	TLA        string
	Country    string
	League     string
	Crest      string
	Address    string
	Website    string
	Founded    *int
	ClubColors string
	Venue      string
	RawJSON    []byte
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if len(t.Name) > 200 {
		return fmt.Errorf("team name must be at most 200 characters")
	}
	if t.Founded != nil && *t.Founded <= 0 {
		return fmt.Errorf("team founded year must be positive")
	}
	return nil
}

// Filter narrows team listings. Name matches as a case-insensitive substring,
// Country matches exactly.
type Filter struct {
	Name    string
	Country string
	Limit   int
}

// Scored pairs a team with its cosine similarity to a query.
type Scored struct {
	Team       Team
	Similarity float64
}
