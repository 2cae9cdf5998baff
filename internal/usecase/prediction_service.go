package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

// PredictionService generates and lists match predictions.
type PredictionService struct {
	matchRepo      match.Repository
	teamRepo       team.Repository
	predictionRepo prediction.Repository
	agent          PredictionAgent
	footballAgent  *FootballAgentService
	workflows      *WorkflowService
	idGen          id.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	matchRepo match.Repository,
	teamRepo team.Repository,
	predictionRepo prediction.Repository,
	agent PredictionAgent,
	footballAgent *FootballAgentService,
	workflows *WorkflowService,
	idGen id.Generator,
	logger *logging.Logger,
) *PredictionService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		predictionRepo: predictionRepo,
		agent:          agent,
		footballAgent:  footballAgent,
		workflows:      workflows,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *PredictionService) GeneratePrediction(ctx context.Context, matchID, additionalContext string) (prediction.MatchPrediction, error) {
	return s.generate(ctx, "", matchID, additionalContext)
}

// GenerateForWorkflow is GeneratePrediction with every step recorded under
// workflowID. The prediction id is derived from workflowID, so a redelivered
// request returns the prediction already stored for it.
func (s *PredictionService) GenerateForWorkflow(ctx context.Context, workflowID, matchID, additionalContext string) (prediction.MatchPrediction, error) {
	workflowID = strings.TrimSpace(workflowID)
	if workflowID == "" {
		return prediction.MatchPrediction{}, fmt.Errorf("%w: workflow id is required", ErrInvalidInput)
	}

	existing, found, err := s.predictionRepo.GetByID(ctx, workflowPredictionID(workflowID))
	if err != nil {
		return prediction.MatchPrediction{}, fmt.Errorf("get workflow prediction: %w", err)
	}
	if found {
		s.workflows.Record(ctx, workflowID, workflow.TypeMatchPrediction, workflow.NodeSavePrediction, workflow.EventInfo, map[string]any{
			"predictionId": existing.ID,
			"reused":       true,
		})
		s.logger.InfoContext(ctx, "workflow prediction already stored", "workflow_id", workflowID, "prediction_id", existing.ID)
		return existing, nil
	}
	return s.generate(ctx, workflowID, matchID, additionalContext)
}

func workflowPredictionID(workflowID string) string {
	return id.Derive("prediction", workflowID)
}

func (s *PredictionService) generate(ctx context.Context, workflowID, matchID, additionalContext string) (prediction.MatchPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GeneratePrediction")
	defer span.End()

	step := func(node string, eventType workflow.EventType, data map[string]any) {
		if workflowID != "" {
			s.workflows.Record(ctx, workflowID, workflow.TypeMatchPrediction, node, eventType, data)
		}
	}

	step(workflow.NodeFetchMatch, workflow.EventStarted, map[string]any{"matchId": matchID})
	item, err := s.loadMatch(ctx, matchID)
	if err != nil {
		step(workflow.NodeFetchMatch, workflow.EventFailed, map[string]any{"error": err.Error()})
		return prediction.MatchPrediction{}, err
	}
	step(workflow.NodeFetchMatch, workflow.EventCompleted, map[string]any{
		"homeTeam": item.HomeTeamName,
		"awayTeam": item.AwayTeamName,
	})

	step(workflow.NodeInvokeAgent, workflow.EventStarted, nil)
	result, err := s.agent.Predict(ctx, PredictionInput{Match: item, AdditionalContext: strings.TrimSpace(additionalContext)})
	if err != nil {
		step(workflow.NodeInvokeAgent, workflow.EventFailed, map[string]any{"error": err.Error()})
		return prediction.MatchPrediction{}, fmt.Errorf("invoke prediction agent: %w", err)
	}
	step(workflow.NodeInvokeAgent, workflow.EventCompleted, map[string]any{
		"model":      s.agent.ModelVersion(),
		"confidence": result.Outcome.Confidence,
	})

	step(workflow.NodeSavePrediction, workflow.EventStarted, nil)
	predictionID := ""
	if workflowID != "" {
		predictionID = workflowPredictionID(workflowID)
	} else if predictionID, err = s.idGen.NewID(); err != nil {
		step(workflow.NodeSavePrediction, workflow.EventFailed, map[string]any{"error": err.Error()})
		return prediction.MatchPrediction{}, fmt.Errorf("generate prediction id: %w", err)
	}
	outcome := result.Outcome
	saved := prediction.MatchPrediction{
		ID:                 predictionID,
		MatchID:            item.ID,
		HomeWinProbability: outcome.HomeWinProbability,
		DrawProbability:    outcome.DrawProbability,
		AwayWinProbability: outcome.AwayWinProbability,
		PredictedHomeScore: outcome.PredictedHomeScore,
		PredictedAwayScore: outcome.PredictedAwayScore,
		Reasoning:          outcome.Reasoning,
		ModelVersion:       s.agent.ModelVersion(),
		Confidence:         outcome.Confidence,
		PredictedAt:        s.now().UTC(),
		ContextEmbedding:   result.ContextEmbedding,
	}
	if err := saved.Validate(); err != nil {
		step(workflow.NodeSavePrediction, workflow.EventFailed, map[string]any{"error": err.Error()})
		return prediction.MatchPrediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.predictionRepo.Create(ctx, saved); err != nil {
		// A concurrent delivery of the same workflow may have stored it first.
		if workflowID != "" {
			if existing, found, getErr := s.predictionRepo.GetByID(ctx, saved.ID); getErr == nil && found {
				step(workflow.NodeSavePrediction, workflow.EventCompleted, map[string]any{"predictionId": existing.ID, "reused": true})
				return existing, nil
			}
		}
		step(workflow.NodeSavePrediction, workflow.EventFailed, map[string]any{"error": err.Error()})
		return prediction.MatchPrediction{}, fmt.Errorf("save prediction: %w", err)
	}
	step(workflow.NodeSavePrediction, workflow.EventCompleted, map[string]any{"predictionId": saved.ID})

	s.logger.InfoContext(ctx, "prediction generated",
		"match_id", item.ID,
		"prediction_id", saved.ID,
		"confidence", saved.Confidence,
	)
	return saved, nil
}

// loadMatch requires the match and both of its teams to exist.
func (s *PredictionService) loadMatch(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	home, exists, err := s.teamRepo.GetByID(ctx, item.HomeTeamID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get home team: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: home team=%s", ErrNotFound, item.HomeTeamID)
	}
	away, exists, err := s.teamRepo.GetByID(ctx, item.AwayTeamID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get away team: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: away team=%s", ErrNotFound, item.AwayTeamID)
	}

	item.HomeTeamName = home.Name
	item.AwayTeamName = away.Name
	return item, nil
}

func (s *PredictionService) ListPredictionsForMatch(ctx context.Context, matchID string) ([]prediction.MatchPrediction, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	items, err := s.predictionRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return items, nil
}

// QueryAgent prefixes the question with the match description when matchID resolves.
func (s *PredictionService) QueryAgent(ctx context.Context, query, matchID string) (AgentQueryResult, error) {
	matchContext := ""
	if matchID = strings.TrimSpace(matchID); matchID != "" {
		item, exists, err := s.matchRepo.GetByID(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "load match context failed", "match_id", matchID, "error", err)
		}
		if exists {
			matchContext = item.Describe()
		}
	}
	if s.footballAgent == nil {
		return AgentQueryResult{}, fmt.Errorf("%w: football agent not configured", ErrDependencyUnavailable)
	}
	return s.footballAgent.Query(ctx, query, matchContext)
}
