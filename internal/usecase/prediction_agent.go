package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const (
	reasoningParseFailure  = "Unable to parse prediction response"
	reasoningAgentFailure  = "Prediction unavailable - agent error"
	similarMatchesInPrompt = 3
)

const predictionSystemPrompt = `You are a football match analyst. Given a fixture and optional context,
estimate the outcome. Answer with a single JSON object and nothing else:
{"homeWinProbability": number, "drawProbability": number, "awayWinProbability": number,
 "predictedHomeScore": integer, "predictedAwayScore": integer,
 "confidence": number, "reasoning": string}
Probabilities are between 0 and 1 and sum to 1. Confidence is between 0 and 1.`

type PredictionInput struct {
	Match             match.Match
	AdditionalContext string
}

type AgentPrediction struct {
	Outcome          prediction.Outcome
	ContextEmbedding []float32
}

// PredictionAgent produces an outcome estimate for one match.
type PredictionAgent interface {
	Predict(ctx context.Context, input PredictionInput) (AgentPrediction, error)
	ModelVersion() string
}

// LLMPredictionAgent asks a language model for a JSON prediction. It never
// fails on model errors; it degrades to the neutral fallback outcome instead.
type LLMPredictionAgent struct {
	llm            LanguageModel
	embedder       EmbeddingGenerator
	predictionRepo prediction.Repository
	metrics        *WorkflowMetrics
	logger         *logging.Logger
	now            func() time.Time
}

func NewLLMPredictionAgent(
	llm LanguageModel,
	embedder EmbeddingGenerator,
	predictionRepo prediction.Repository,
	metrics *WorkflowMetrics,
	logger *logging.Logger,
) *LLMPredictionAgent {
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMPredictionAgent{
		llm:            llm,
		embedder:       embedder,
		predictionRepo: predictionRepo,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

func (a *LLMPredictionAgent) ModelVersion() string {
	if a.llm == nil {
		return "fallback"
	}
	return a.llm.Model()
}

func (a *LLMPredictionAgent) Predict(ctx context.Context, input PredictionInput) (AgentPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LLMPredictionAgent.Predict")
	defer span.End()

	embedding := embedOrNil(ctx, a.embedder, a.logger, predictionContextText(input))
	out := AgentPrediction{ContextEmbedding: embedding}

	if a.llm == nil {
		out.Outcome = prediction.Fallback(reasoningAgentFailure)
		return out, nil
	}

	started := a.now()
	resp, err := a.llm.Chat(ctx, ChatRequest{
		System: predictionSystemPrompt,
		Messages: []ChatMessage{
			{Role: RoleUser, Content: a.buildPrompt(ctx, input, embedding)},
		},
		JSON: true,
	})
	a.metrics.AgentInvoked(ctx, "prediction", a.now().Sub(started))
	if err != nil {
		a.logger.WarnContext(ctx, "prediction agent call failed", "match_id", input.Match.ID, "error", err)
		out.Outcome = prediction.Fallback(reasoningAgentFailure)
		return out, nil
	}

	outcome, ok := parsePredictionOutcome(resp.Message.Content)
	if !ok {
		a.logger.WarnContext(ctx, "prediction agent returned unparseable response",
			"match_id", input.Match.ID,
			"response", abbreviate(resp.Message.Content, 200),
		)
		out.Outcome = prediction.Fallback(reasoningParseFailure)
		return out, nil
	}
	out.Outcome = outcome.Normalize()
	return out, nil
}

func (a *LLMPredictionAgent) buildPrompt(ctx context.Context, input PredictionInput, embedding []float32) string {
	var b strings.Builder
	b.WriteString(input.Match.Describe())
	if input.Match.Stadium != "" {
		fmt.Fprintf(&b, " at %s", input.Match.Stadium)
	}
	b.WriteString(".\n")
	if ctxText := strings.TrimSpace(input.AdditionalContext); ctxText != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", ctxText)
	}

	if a.predictionRepo == nil || len(embedding) == 0 {
		return b.String()
	}
	similar, err := a.predictionRepo.SearchSimilar(ctx, embedding, similarMatchesInPrompt)
	if err != nil {
		a.logger.WarnContext(ctx, "search similar matches for prompt failed", "error", err)
		return b.String()
	}
	header := false
	for _, item := range similar {
		if item.MatchID == input.Match.ID {
			continue
		}
		if !header {
			b.WriteString("Similar past fixtures:\n")
			header = true
		}
		fmt.Fprintf(&b, "- %s vs %s on %s", item.HomeTeamName, item.AwayTeamName, item.MatchDate.UTC().Format("2006-01-02"))
		if item.ActualHomeScore != nil && item.ActualAwayScore != nil {
			fmt.Fprintf(&b, " finished %d-%d", *item.ActualHomeScore, *item.ActualAwayScore)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func predictionContextText(input PredictionInput) string {
	return strings.TrimSpace(fmt.Sprintf("%s vs %s %s %s",
		input.Match.HomeTeamName,
		input.Match.AwayTeamName,
		input.Match.MatchDate.UTC().Format("2006-01-02"),
		input.AdditionalContext,
	))
}

type predictionPayload struct {
	HomeWinProbability *float64 `json:"homeWinProbability"`
	DrawProbability    *float64 `json:"drawProbability"`
	AwayWinProbability *float64 `json:"awayWinProbability"`
	PredictedHomeScore *float64 `json:"predictedHomeScore"`
	PredictedAwayScore *float64 `json:"predictedAwayScore"`
	Confidence         *float64 `json:"confidence"`
	Reasoning          string   `json:"reasoning"`
}

// parsePredictionOutcome reads the JSON object between the first '{' and the last '}'.
func parsePredictionOutcome(content string) (prediction.Outcome, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return prediction.Outcome{}, false
	}

	var payload predictionPayload
	if err := sonic.UnmarshalString(content[start:end+1], &payload); err != nil {
		return prediction.Outcome{}, false
	}
	if payload.HomeWinProbability == nil || payload.DrawProbability == nil || payload.AwayWinProbability == nil {
		return prediction.Outcome{}, false
	}

	outcome := prediction.Outcome{
		HomeWinProbability: float32(*payload.HomeWinProbability),
		DrawProbability:    float32(*payload.DrawProbability),
		AwayWinProbability: float32(*payload.AwayWinProbability),
		PredictedHomeScore: roundScore(payload.PredictedHomeScore),
		PredictedAwayScore: roundScore(payload.PredictedAwayScore),
		Confidence:         0.5,
		Reasoning:          strings.TrimSpace(payload.Reasoning),
	}
	if payload.Confidence != nil {
		outcome.Confidence = float32(*payload.Confidence)
	}
	return outcome, true
}

// maxPredictedScore bounds model scorelines; anything larger is noise.
const maxPredictedScore = 99

func roundScore(v *float64) *int {
	if v == nil || math.IsNaN(*v) || *v < 0 || *v > maxPredictedScore {
		return nil
	}
	score := int(math.Round(*v))
	return &score
}

func abbreviate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
