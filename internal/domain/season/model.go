package season

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Season is one edition of a competition.
type Season struct {
	ID               string
	ExternalID       int64
	CompetitionID    string
	CompetitionName  string
	StartDate        time.Time
	EndDate          time.Time
	CurrentMatchday  *int
	WinnerExternalID *int64
	WinnerName       string
	Stages           []string
	RawJSON          []byte
	Embedding        []float32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.ExternalID <= 0 {
		return fmt.Errorf("season external id must be positive")
	}
	if s.CompetitionID == "" {
		return fmt.Errorf("season competition id is required")
	}
	if !s.EndDate.IsZero() && s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("season end date is before start date")
	}
	return nil
}

// IsCompleted reports whether the season is over on today: past its end date or with a winner.
func (s Season) IsCompleted(today time.Time) bool {
	return truncateDay(today).After(truncateDay(s.EndDate)) || s.WinnerName != ""
}

// DaysRemaining is zero for completed seasons.
func (s Season) DaysRemaining(today time.Time) int {
	if s.IsCompleted(today) {
		return 0
	}
	days := daysBetween(truncateDay(today), truncateDay(s.EndDate))
	if days < 0 {
		return 0
	}
	return days
}

// TotalMatchdays estimates matchdays as one per week of the season.
func (s Season) TotalMatchdays() int {
	return daysBetween(truncateDay(s.StartDate), truncateDay(s.EndDate)) / 7
}

func (s Season) StartDateString() string {
	return s.StartDate.Format(dateLayout)
}

func (s Season) EndDateString() string {
	return s.EndDate.Format(dateLayout)
}

// ParseDate parses a yyyy-MM-dd date as UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
