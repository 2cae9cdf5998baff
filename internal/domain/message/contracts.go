package message

import "time"

// Message is a contract carried by the bus. Topic routes it, Correlation ties
// request and completion together.
type Message interface {
	Topic() string
	Correlation() string
}

const (
	TopicCompetitionSyncRequested     = "competition.sync.requested"
	TopicCompetitionSyncCompleted     = "competition.sync.completed"
	TopicTeamDataIngested             = "team.data.ingested"
	TopicEmbeddingGenerationRequested = "embedding.generation.requested"
	TopicEmbeddingGenerationCompleted = "embedding.generation.completed"
	TopicMatchPredictionRequested     = "match.prediction.requested"
	TopicMatchPredictionCompleted     = "match.prediction.completed"
)

// Entity types accepted by embedding generation.
const (
	EntityTeam        = "Team"
	EntityCompetition = "Competition"
	EntitySeason      = "Season"
)

// CompetitionSyncRequested asks for an ingest of one competition. Refresh
// bypasses the provider cache; scheduled syncs always set it.
type CompetitionSyncRequested struct {
	CompetitionCode string    `json:"competitionCode"`
	CorrelationID   string    `json:"correlationId"`
	Refresh         bool      `json:"refresh,omitempty"`
	RequestedAt     time.Time `json:"requestedAt"`
}

func (CompetitionSyncRequested) Topic() string         { return TopicCompetitionSyncRequested }
func (m CompetitionSyncRequested) Correlation() string { return m.CorrelationID }

type CompetitionSyncCompleted struct {
	CompetitionCode  string    `json:"competitionCode"`
	CorrelationID    string    `json:"correlationId"`
	Success          bool      `json:"success"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	SeasonsProcessed int       `json:"seasonsProcessed"`
	CompletedAt      time.Time `json:"completedAt"`
}

func (CompetitionSyncCompleted) Topic() string         { return TopicCompetitionSyncCompleted }
func (m CompetitionSyncCompleted) Correlation() string { return m.CorrelationID }

type TeamDataIngested struct {
	TeamID     string    `json:"teamId"`
	TeamName   string    `json:"teamName"`
	Country    string    `json:"country,omitempty"`
	IngestedAt time.Time `json:"ingestedAt"`
}

func (TeamDataIngested) Topic() string         { return TopicTeamDataIngested }
func (m TeamDataIngested) Correlation() string { return m.TeamID }

type EmbeddingGenerationRequested struct {
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId"`
	CorrelationID string    `json:"correlationId"`
	Text          string    `json:"text"`
	RequestedAt   time.Time `json:"requestedAt"`
}

func (EmbeddingGenerationRequested) Topic() string         { return TopicEmbeddingGenerationRequested }
func (m EmbeddingGenerationRequested) Correlation() string { return m.CorrelationID }

type EmbeddingGenerationCompleted struct {
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId"`
	CorrelationID string    `json:"correlationId"`
	Success       bool      `json:"success"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	Dimensions    *int      `json:"dimensions,omitempty"`
	CompletedAt   time.Time `json:"completedAt"`
}

func (EmbeddingGenerationCompleted) Topic() string         { return TopicEmbeddingGenerationCompleted }
func (m EmbeddingGenerationCompleted) Correlation() string { return m.CorrelationID }

type MatchPredictionRequested struct {
	MatchID           string    `json:"matchId"`
	CorrelationID     string    `json:"correlationId"`
	AdditionalContext string    `json:"additionalContext,omitempty"`
	RequestedAt       time.Time `json:"requestedAt"`
}

func (MatchPredictionRequested) Topic() string         { return TopicMatchPredictionRequested }
func (m MatchPredictionRequested) Correlation() string { return m.CorrelationID }

type MatchPredictionCompleted struct {
	MatchID       string    `json:"matchId"`
	PredictionID  string    `json:"predictionId,omitempty"`
	CorrelationID string    `json:"correlationId"`
	Success       bool      `json:"success"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	Confidence    *float32  `json:"confidence,omitempty"`
	CompletedAt   time.Time `json:"completedAt"`
}

func (MatchPredictionCompleted) Topic() string         { return TopicMatchPredictionCompleted }
func (m MatchPredictionCompleted) Correlation() string { return m.CorrelationID }

// New returns an empty pointer to the contract registered for topic.
func New(topic string) (Message, bool) {
	switch topic {
	case TopicCompetitionSyncRequested:
		return &CompetitionSyncRequested{}, true
	case TopicCompetitionSyncCompleted:
		return &CompetitionSyncCompleted{}, true
	case TopicTeamDataIngested:
		return &TeamDataIngested{}, true
	case TopicEmbeddingGenerationRequested:
		return &EmbeddingGenerationRequested{}, true
	case TopicEmbeddingGenerationCompleted:
		return &EmbeddingGenerationCompleted{}, true
	case TopicMatchPredictionRequested:
		return &MatchPredictionRequested{}, true
	case TopicMatchPredictionCompleted:
		return &MatchPredictionCompleted{}, true
	default:
		return nil, false
	}
}

// Topics lists every registered topic.
func Topics() []string {
	return []string{
		TopicCompetitionSyncRequested,
		TopicCompetitionSyncCompleted,
		TopicTeamDataIngested,
		TopicEmbeddingGenerationRequested,
		TopicEmbeddingGenerationCompleted,
		TopicMatchPredictionRequested,
		TopicMatchPredictionCompleted,
	}
}
