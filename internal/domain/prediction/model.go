package prediction

import (
	"fmt"
	"math"
	"time"
)

// MatchPrediction is one model output for a match.
type MatchPrediction struct {
	ID                 string
	MatchID            string
	HomeWinProbability float32
	DrawProbability    float32
	AwayWinProbability float32
	PredictedHomeScore *int
	PredictedAwayScore *int
	Reasoning          string
	ModelVersion       string
	Confidence         float32
	PredictedAt        time.Time
	ContextEmbedding   []float32
}

func (p MatchPrediction) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("prediction id is required")
	}
	if p.MatchID == "" {
		return fmt.Errorf("prediction match id is required")
	}
	for name, v := range map[string]float32{
		"home win probability": p.HomeWinProbability,
		"draw probability":     p.DrawProbability,
		"away win probability": p.AwayWinProbability,
		"confidence":           p.Confidence,
	} {
		if v < 0 || v > 1 || math.IsNaN(float64(v)) {
			return fmt.Errorf("prediction %s must be within [0,1]", name)
		}
	}
	if p.PredictedHomeScore != nil && *p.PredictedHomeScore < 0 {
		return fmt.Errorf("prediction home score must not be negative")
	}
	if p.PredictedAwayScore != nil && *p.PredictedAwayScore < 0 {
		return fmt.Errorf("prediction away score must not be negative")
	}
	return nil
}

// Outcome is the probability triple produced by an agent before persistence.
type Outcome struct {
	HomeWinProbability float32
	DrawProbability    float32
	AwayWinProbability float32
	PredictedHomeScore *int
	PredictedAwayScore *int
	Confidence         float32
	Reasoning          string
}

// Normalize clamps every probability to [0,1] and rescales the triple to sum to 1.
// An all-zero triple becomes the neutral 0.33/0.34/0.33 split.
func (o Outcome) Normalize() Outcome {
	o.HomeWinProbability = clamp01(o.HomeWinProbability)
	o.DrawProbability = clamp01(o.DrawProbability)
	o.AwayWinProbability = clamp01(o.AwayWinProbability)
	o.Confidence = clamp01(o.Confidence)

	sum := o.HomeWinProbability + o.DrawProbability + o.AwayWinProbability
	if sum <= 0 {
		o.HomeWinProbability, o.DrawProbability, o.AwayWinProbability = 0.33, 0.34, 0.33
		return o
	}
	o.HomeWinProbability /= sum
	o.DrawProbability /= sum
	o.AwayWinProbability /= sum
	return o
}

// Fallback is the neutral outcome used when the agent cannot answer.
func Fallback(reasoning string) Outcome {
	return Outcome{
		HomeWinProbability: 0.33,
		DrawProbability:    0.34,
		AwayWinProbability: 0.33,
		Confidence:         0.1,
		Reasoning:          reasoning,
	}
}

func clamp01(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// SimilarMatch is a historical prediction whose context resembles a query.
type SimilarMatch struct {
	MatchID            string
	HomeTeamID         string
	HomeTeamName       string
	AwayTeamID         string
	AwayTeamName       string
	MatchDate          time.Time
	ActualHomeScore    *int
	ActualAwayScore    *int
	HomeWinProbability float32
	DrawProbability    float32
	AwayWinProbability float32
	Similarity         float64
}
