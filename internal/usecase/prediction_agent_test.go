package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
)

func TestParsePredictionOutcome_ExtractsEmbeddedJSON(t *testing.T) {
	t.Parallel()

	content := "Sure! Here is my estimate:\n```json\n{\"homeWinProbability\":0.5,\"drawProbability\":0.3,\"awayWinProbability\":0.2,\"predictedHomeScore\":2,\"predictedAwayScore\":1,\"confidence\":0.8,\"reasoning\":\"home form\"}\n```"
	got, ok := parsePredictionOutcome(content)
	if !ok {
		t.Fatalf("expected content to parse")
	}
	if got.HomeWinProbability != 0.5 || got.Reasoning != "home form" {
		t.Fatalf("unexpected outcome: %+v", got)
	}
	if got.PredictedHomeScore == nil || *got.PredictedHomeScore != 2 {
		t.Fatalf("expected home score 2, got %v", got.PredictedHomeScore)
	}
}

func TestParsePredictionOutcome_RejectsMissingProbabilities(t *testing.T) {
	t.Parallel()

	cases := []string{
		"no json at all",
		"} backwards {",
		`{"homeWinProbability":0.5,"reasoning":"partial"}`,
		`{"homeWinProbability":"high"}`,
	}
	for _, content := range cases {
		if _, ok := parsePredictionOutcome(content); ok {
			t.Fatalf("expected parse failure for %q", content)
		}
	}
}

func TestParsePredictionOutcome_DropsOutOfRangeScores(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		score string
		want  *int
	}{
		{name: "rounded", score: "2.6", want: intPtr(3)},
		{name: "upper bound", score: "99", want: intPtr(99)},
		{name: "above bound", score: "100", want: nil},
		{name: "overflowing", score: "1e20", want: nil},
		{name: "negative", score: "-1", want: nil},
	}
	for _, tc := range cases {
		content := `{"homeWinProbability":0.4,"drawProbability":0.3,"awayWinProbability":0.3,"predictedHomeScore":` + tc.score + `}`
		got, ok := parsePredictionOutcome(content)
		if !ok {
			t.Fatalf("%s: expected content to parse", tc.name)
		}
		switch {
		case tc.want == nil && got.PredictedHomeScore != nil:
			t.Fatalf("%s: expected no score, got %d", tc.name, *got.PredictedHomeScore)
		case tc.want != nil && (got.PredictedHomeScore == nil || *got.PredictedHomeScore != *tc.want):
			t.Fatalf("%s: expected score %d, got %v", tc.name, *tc.want, got.PredictedHomeScore)
		}
	}
}

func intPtr(v int) *int { return &v }

func testMatch() match.Match {
	return match.Match{
		ID:           "match-1",
		HomeTeamName: "Arsenal",
		AwayTeamName: "Chelsea",
		MatchDate:    time.Date(2026, time.May, 3, 15, 0, 0, 0, time.UTC),
	}
}

func TestLLMPredictionAgent_FallsBackOnModelError(t *testing.T) {
	t.Parallel()

	llm := &scriptedModel{errs: []error{errors.New("connection refused")}}
	agent := NewLLMPredictionAgent(llm, nil, nil, nil, nil)

	got, err := agent.Predict(context.Background(), PredictionInput{Match: testMatch()})
	if err != nil {
		t.Fatalf("predict must not fail on model error, got %v", err)
	}
	if got.Outcome.Reasoning != reasoningAgentFailure || got.Outcome.Confidence != 0.1 {
		t.Fatalf("expected agent error fallback, got %+v", got.Outcome)
	}
	if got.Outcome.DrawProbability != 0.34 {
		t.Fatalf("expected neutral draw probability 0.34, got %v", got.Outcome.DrawProbability)
	}
}

func TestLLMPredictionAgent_FallsBackOnGarbage(t *testing.T) {
	t.Parallel()

	llm := &scriptedModel{responses: []ChatResponse{{Message: ChatMessage{Content: "I think Arsenal wins"}}}}
	agent := NewLLMPredictionAgent(llm, nil, nil, nil, nil)

	got, err := agent.Predict(context.Background(), PredictionInput{Match: testMatch()})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got.Outcome.Reasoning != reasoningParseFailure {
		t.Fatalf("expected parse fallback, got %q", got.Outcome.Reasoning)
	}
}

func TestLLMPredictionAgent_NormalizesProbabilities(t *testing.T) {
	t.Parallel()

	llm := &scriptedModel{responses: []ChatResponse{{Message: ChatMessage{
		Content: `{"homeWinProbability":0.6,"drawProbability":0.6,"awayWinProbability":0.8,"confidence":1.4,"reasoning":"overconfident"}`,
	}}}}
	embedder := &staticEmbedder{vector: []float32{1, 0, 0}}
	agent := NewLLMPredictionAgent(llm, embedder, nil, nil, nil)

	got, err := agent.Predict(context.Background(), PredictionInput{Match: testMatch(), AdditionalContext: "rain"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	sum := got.Outcome.HomeWinProbability + got.Outcome.DrawProbability + got.Outcome.AwayWinProbability
	if math.Abs(float64(sum)-1) > 1e-5 {
		t.Fatalf("expected probabilities to sum to 1, got %v", sum)
	}
	if got.Outcome.Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %v", got.Outcome.Confidence)
	}
	if len(got.ContextEmbedding) != 3 {
		t.Fatalf("expected context embedding, got %v", got.ContextEmbedding)
	}
	if !llm.requests[0].JSON {
		t.Fatalf("prediction requests must ask for JSON output")
	}
}

func TestPredictionContextText(t *testing.T) {
	t.Parallel()

	got := predictionContextText(PredictionInput{Match: testMatch(), AdditionalContext: "title race"})
	want := "Arsenal vs Chelsea 2026-05-03 title race"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
