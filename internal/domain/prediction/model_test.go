package prediction

import (
	"math"
	"testing"
)

func TestOutcomeNormalize_RescalesToOne(t *testing.T) {
	t.Parallel()

	got := Outcome{HomeWinProbability: 0.6, DrawProbability: 0.3, AwayWinProbability: 0.3, Confidence: 1.4}.Normalize()

	sum := got.HomeWinProbability + got.DrawProbability + got.AwayWinProbability
	if math.Abs(float64(sum)-1) > 1e-6 {
		t.Fatalf("expected probabilities to sum to 1, got %f", sum)
	}
	if math.Abs(float64(got.HomeWinProbability)-0.5) > 1e-6 {
		t.Fatalf("expected home win 0.5, got %f", got.HomeWinProbability)
	}
	if got.Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %f", got.Confidence)
	}
}

func TestOutcomeNormalize_AllZeroFallsBackToNeutral(t *testing.T) {
	t.Parallel()

	got := Outcome{HomeWinProbability: -1}.Normalize()
	if got.HomeWinProbability != 0.33 || got.DrawProbability != 0.34 || got.AwayWinProbability != 0.33 {
		t.Fatalf("unexpected neutral split: %+v", got)
	}
}

func TestMatchPredictionValidate(t *testing.T) {
	t.Parallel()

	p := MatchPrediction{ID: "p1", MatchID: "m1", HomeWinProbability: 0.5, DrawProbability: 0.2, AwayWinProbability: 0.3, Confidence: 0.7}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.DrawProbability = 1.5
	if err := p.Validate(); err == nil {
		t.Fatalf("expected out-of-range probability to be rejected")
	}
}
