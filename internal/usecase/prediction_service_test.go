package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	matchmock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/match"
	predictionmock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/prediction"
	teammock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/team"
	workflowmock "github.com/riskibarqy/dotmatchlens/internal/mocks/domain/workflow"
	"github.com/stretchr/testify/mock"
)

type stubPredictionAgent struct {
	outcome prediction.Outcome
	err     error
}

func (a stubPredictionAgent) Predict(context.Context, PredictionInput) (AgentPrediction, error) {
	return AgentPrediction{Outcome: a.outcome, ContextEmbedding: []float32{1, 0}}, a.err
}

func (stubPredictionAgent) ModelVersion() string { return "llama3.2" }

func TestPredictionService_GeneratePrediction_SavesOutcome(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)
	predRepo := predictionmock.NewRepository(t)
	kickoff := time.Date(2026, time.May, 3, 15, 0, 0, 0, time.UTC)

	matchRepo.On("GetByID", mock.Anything, "m1").Return(match.Match{ID: "m1", HomeTeamID: "h", AwayTeamID: "a", MatchDate: kickoff}, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "h").Return(team.Team{ID: "h", Name: "Arsenal"}, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "a").Return(team.Team{ID: "a", Name: "Chelsea"}, true, nil).Once()
	predRepo.On("Create", mock.Anything, mock.MatchedBy(func(p prediction.MatchPrediction) bool {
		return p.MatchID == "m1" && p.ModelVersion == "llama3.2" && p.HomeWinProbability == 0.5 && len(p.ContextEmbedding) == 2
	})).Return(nil).Once()

	agent := stubPredictionAgent{outcome: prediction.Outcome{HomeWinProbability: 0.5, DrawProbability: 0.3, AwayWinProbability: 0.2, Confidence: 0.7}}
	svc := NewPredictionService(matchRepo, teamRepo, predRepo, agent, nil, nil, &sequenceIDGenerator{prefix: "p"}, nil)

	got, err := svc.GeneratePrediction(context.Background(), "m1", "")
	if err != nil {
		t.Fatalf("generate prediction: %v", err)
	}
	if got.ID != "p-1" || got.Confidence != 0.7 {
		t.Fatalf("unexpected prediction %+v", got)
	}
}

func TestPredictionService_GeneratePrediction_MissingTeam(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)
	matchRepo.On("GetByID", mock.Anything, "m1").Return(match.Match{ID: "m1", HomeTeamID: "h", AwayTeamID: "a"}, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "h").Return(team.Team{}, false, nil).Once()

	svc := NewPredictionService(matchRepo, teamRepo, predictionmock.NewRepository(t), stubPredictionAgent{}, nil, nil, nil, nil)
	if _, err := svc.GeneratePrediction(context.Background(), "m1", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_GenerateForWorkflow_RecordsSteps(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	eventRepo := workflowmock.NewRepository(t)
	matchRepo.On("GetByID", mock.Anything, "m1").Return(match.Match{}, false, nil).Once()

	var recorded []workflow.Event
	eventRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		recorded = append(recorded, args.Get(1).(workflow.Event))
	}).Return(nil)

	predRepo := predictionmock.NewRepository(t)
	predRepo.On("GetByID", mock.Anything, workflowPredictionID("wf-1")).Return(prediction.MatchPrediction{}, false, nil).Once()

	workflows := NewWorkflowService(eventRepo, nil, nil, nil)
	svc := NewPredictionService(matchRepo, teammock.NewRepository(t), predRepo, stubPredictionAgent{}, nil, workflows, nil, nil)

	if _, err := svc.GenerateForWorkflow(context.Background(), "wf-1", "m1", ""); err == nil {
		t.Fatalf("expected missing match error")
	}
	if len(recorded) != 2 || recorded[1].NodeID != workflow.NodeFetchMatch || recorded[1].EventType != workflow.EventFailed {
		t.Fatalf("expected fetch_match started and failed, got %+v", recorded)
	}
}

func TestPredictionService_QueryAgent_AddsMatchContext(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	matchRepo.On("GetByID", mock.Anything, "m1").Return(testMatch(), true, nil).Once()
	llm := &scriptedModel{responses: []ChatResponse{{Message: ChatMessage{Content: "Arsenal are favourites."}}}}
	agentSvc := NewFootballAgentService(llm, nil, 0, nil, nil)
	svc := NewPredictionService(matchRepo, nil, nil, nil, agentSvc, nil, nil, nil)

	got, err := svc.QueryAgent(context.Background(), "who wins?", "m1")
	if err != nil {
		t.Fatalf("query agent: %v", err)
	}
	if got.Response != "Arsenal are favourites." {
		t.Fatalf("unexpected response %q", got.Response)
	}
	if prompt := llm.requests[0].Messages[0].Content; !strings.HasPrefix(prompt, "Match: Arsenal vs Chelsea") {
		t.Fatalf("expected match context prefix, got %q", prompt)
	}
}

type stubGenerator struct {
	saved prediction.MatchPrediction
	err   error
}

func (g stubGenerator) GenerateForWorkflow(context.Context, string, string, string) (prediction.MatchPrediction, error) {
	return g.saved, g.err
}

func TestPredictionConsumer_PublishesCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		generator stubGenerator
		success   bool
	}{
		{name: "success", generator: stubGenerator{saved: prediction.MatchPrediction{ID: "p1", Confidence: 0.6}}, success: true},
		{name: "failure", generator: stubGenerator{err: ErrNotFound}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pub := &recordingPublisher{}
			consumer := NewPredictionConsumer(tc.generator, nil, pub, nil, nil, nil)
			if err := consumer.Handle(context.Background(), &message.MatchPredictionRequested{MatchID: "m1", CorrelationID: "c1"}); err != nil {
				t.Fatalf("handle: %v", err)
			}

			completed := pub.Published()[0].(message.MatchPredictionCompleted)
			if completed.Success != tc.success || completed.CorrelationID != "c1" {
				t.Fatalf("unexpected completion %+v", completed)
			}
			if tc.success && (completed.PredictionID != "p1" || completed.Confidence == nil || *completed.Confidence != 0.6) {
				t.Fatalf("successful completion must carry prediction id and confidence, got %+v", completed)
			}
			if !tc.success && completed.ErrorMessage == "" {
				t.Fatalf("failed completion must carry error")
			}
		})
	}
}

func TestPredictionConsumer_PublishErrorIsReturned(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: errors.New("bus closed")}
	consumer := NewPredictionConsumer(stubGenerator{}, nil, pub, nil, nil, nil)
	if err := consumer.Handle(context.Background(), message.MatchPredictionRequested{MatchID: "m1", CorrelationID: "c1"}); err == nil {
		t.Fatalf("expected publish error to be returned for redelivery")
	}
}
