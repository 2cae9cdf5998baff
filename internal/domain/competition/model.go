package competition

import (
	"fmt"
	"strings"
	"time"
)

// Competition is a league or cup as published by the football-data provider.
type Competition struct {
	ID         string
	ExternalID int64
	Name       string
	Code       string
	Type       string
	Emblem     string
	AreaName   string
	AreaCode   string
	AreaFlag   string
	RawJSON    []byte
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncedAt   *time.Time
}

func (c Competition) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("competition id is required")
	}
	if c.ExternalID <= 0 {
		return fmt.Errorf("competition external id must be positive")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("competition name is required")
	}
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("competition code is required")
	}
	return nil
}

// NormalizeCode upper-cases and trims a competition code ("pl" -> "PL").
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Scored pairs a competition with its cosine similarity to a query.
type Scored struct {
	Competition Competition
	Similarity  float64
}
