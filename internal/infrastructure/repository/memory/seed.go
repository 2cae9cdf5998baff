package memory

import (
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
)

// Demo ids used when the API runs without a database.
const (
	TeamIDArsenal   = "00000000-0000-4000-8000-000000000001"
	TeamIDChelsea   = "00000000-0000-4000-8000-000000000002"
	TeamIDLiverpool = "00000000-0000-4000-8000-000000000003"
	TeamIDCity      = "00000000-0000-4000-8000-000000000004"

	MatchIDNorthLondon = "00000000-0000-4000-8000-000000000101"
	MatchIDNorthWest   = "00000000-0000-4000-8000-000000000102"
)

var seedEpoch = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDArsenal, Name: "Arsenal FC", ShortName: "Arsenal", TLA: "ARS", Country: "England", League: "Premier League", Venue: "Emirates Stadium", Founded: intPtr(1886), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: TeamIDChelsea, Name: "Chelsea FC", ShortName: "Chelsea", TLA: "CHE", Country: "England", League: "Premier League", Venue: "Stamford Bridge", Founded: intPtr(1905), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: TeamIDLiverpool, Name: "Liverpool FC", ShortName: "Liverpool", TLA: "LIV", Country: "England", League: "Premier League", Venue: "Anfield", Founded: intPtr(1892), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: TeamIDCity, Name: "Manchester City FC", ShortName: "Man City", TLA: "MCI", Country: "England", League: "Premier League", Venue: "Etihad Stadium", Founded: intPtr(1880), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "00000000-0000-4000-8000-000000000201", Name: "Bukayo Saka", Position: "Offence", JerseyNumber: intPtr(7), TeamID: strPtr(TeamIDArsenal), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: "00000000-0000-4000-8000-000000000202", Name: "Declan Rice", Position: "Midfield", JerseyNumber: intPtr(41), TeamID: strPtr(TeamIDArsenal), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: "00000000-0000-4000-8000-000000000203", Name: "Cole Palmer", Position: "Midfield", JerseyNumber: intPtr(10), TeamID: strPtr(TeamIDChelsea), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: "00000000-0000-4000-8000-000000000204", Name: "Mohamed Salah", Position: "Offence", JerseyNumber: intPtr(11), TeamID: strPtr(TeamIDLiverpool), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: "00000000-0000-4000-8000-000000000205", Name: "Erling Haaland", Position: "Offence", JerseyNumber: intPtr(9), TeamID: strPtr(TeamIDCity), CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
	}
}

func SeedMatches() []match.Match {
	return []match.Match{
		{ID: MatchIDNorthLondon, HomeTeamID: TeamIDArsenal, AwayTeamID: TeamIDChelsea, MatchDate: time.Date(2025, 9, 20, 16, 30, 0, 0, time.UTC), Stadium: "Emirates Stadium", HomeScore: intPtr(2), AwayScore: intPtr(1), Status: match.StatusCompleted, CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{ID: MatchIDNorthWest, HomeTeamID: TeamIDLiverpool, AwayTeamID: TeamIDCity, MatchDate: time.Date(2026, 11, 8, 16, 30, 0, 0, time.UTC), Stadium: "Anfield", Status: match.StatusScheduled, CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
	}
}

func SeedMatchEvents() []match.Event {
	return []match.Event{
		{ID: "00000000-0000-4000-8000-000000000301", MatchID: MatchIDNorthLondon, PlayerID: strPtr("00000000-0000-4000-8000-000000000201"), EventType: "Goal", Minute: 23, CreatedAt: seedEpoch},
		{ID: "00000000-0000-4000-8000-000000000302", MatchID: MatchIDNorthLondon, PlayerID: strPtr("00000000-0000-4000-8000-000000000203"), EventType: "Goal", Minute: 58, Description: "Penalty", CreatedAt: seedEpoch},
		{ID: "00000000-0000-4000-8000-000000000303", MatchID: MatchIDNorthLondon, PlayerID: strPtr("00000000-0000-4000-8000-000000000202"), EventType: "Goal", Minute: 81, CreatedAt: seedEpoch},
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
