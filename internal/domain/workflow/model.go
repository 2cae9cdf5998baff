package workflow

import (
	"sort"
	"time"
)

type EventType string

const (
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventInfo      EventType = "info"
)

const (
	TypeMatchPrediction = "match_prediction"
	TypeBatchPrediction = "batch_prediction"
	TypeCompetitionSync = "competition_sync"
)

// Node ids of the match prediction workflow.
const (
	NodeStart          = "start"
	NodeReceiveRequest = "receive_request"
	NodeFetchMatch     = "fetch_match"
	NodeInvokeAgent    = "invoke_agent"
	NodeSavePrediction = "save_prediction"
	NodePublishResult  = "publish_result"
	NodeEnd            = "end"

	NodeReceiveBatch     = "receive_batch"
	NodeProcessBatch     = "process_batch"
	NodeAggregateResults = "aggregate_results"
)

// Event is one recorded step transition of a workflow run.
type Event struct {
	ID           string
	WorkflowID   string
	WorkflowType string
	EventType    EventType
	NodeID       string
	Data         map[string]any
	TraceID      string
	SpanID       string
	OccurredAt   time.Time
}

type NodeStatus string

const (
	NodePending   NodeStatus = "pending"
	NodeRunning   NodeStatus = "running"
	NodeCompleted NodeStatus = "completed"
	NodeFailed    NodeStatus = "failed"
)

type Node struct {
	ID          string
	Name        string
	Type        string
	Status      NodeStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
	Metadata    map[string]any
}

type Edge struct {
	ID     string
	Source string
	Target string
	Label  string
}

// Graph is the visualization model of a workflow run.
type Graph struct {
	WorkflowID   string
	WorkflowType string
	Status       string
	StartedAt    time.Time
	CompletedAt  *time.Time
	Nodes        []Node
	Edges        []Edge
	Metadata     map[string]any
}

type stepDef struct {
	id, name, kind string
}

var matchPredictionSteps = []stepDef{
	{NodeReceiveRequest, "Receive Request", "consumer"},
	{NodeFetchMatch, "Fetch Match Data", "step"},
	{NodeInvokeAgent, "Invoke AI Agent", "agent"},
	{NodeSavePrediction, "Save Prediction", "step"},
	{NodePublishResult, "Publish Result", "publisher"},
}

// BuildMatchPredictionGraph derives node states of one prediction run from its events.
func BuildMatchPredictionGraph(workflowID, matchID, status string, startedAt time.Time, completedAt *time.Time, events []Event) Graph {
	nodes := make([]Node, 0, len(matchPredictionSteps)+2)
	nodes = append(nodes, Node{ID: NodeStart, Name: "Start", Type: "start", Status: NodeCompleted, StartedAt: &startedAt, CompletedAt: &startedAt})
	for _, step := range matchPredictionSteps {
		nodes = append(nodes, Node{
			ID:          step.id,
			Name:        step.name,
			Type:        step.kind,
			Status:      nodeStatus(events, step.id),
			StartedAt:   firstAt(events, step.id, EventStarted),
			CompletedAt: firstAt(events, step.id, EventCompleted, EventFailed),
		})
	}
	nodes = append(nodes, Node{ID: NodeEnd, Name: "End", Type: "end", Status: endStatus(status), StartedAt: completedAt, CompletedAt: completedAt})

	edges := []Edge{
		{ID: "e1", Source: NodeStart, Target: NodeReceiveRequest, Label: "trigger"},
		{ID: "e2", Source: NodeReceiveRequest, Target: NodeFetchMatch, Label: "next"},
		{ID: "e3", Source: NodeFetchMatch, Target: NodeInvokeAgent, Label: "next"},
		{ID: "e4", Source: NodeInvokeAgent, Target: NodeSavePrediction, Label: "next"},
		{ID: "e5", Source: NodeSavePrediction, Target: NodePublishResult, Label: "next"},
		{ID: "e6", Source: NodePublishResult, Target: NodeEnd, Label: "complete"},
	}

	return Graph{
		WorkflowID:   workflowID,
		WorkflowType: TypeMatchPrediction,
		Status:       status,
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
		Nodes:        nodes,
		Edges:        edges,
		Metadata: map[string]any{
			"matchId":    matchID,
			"eventCount": len(events),
		},
	}
}

// BuildBatchPredictionGraph summarises a batch of prediction runs.
func BuildBatchPredictionGraph(workflowID, status string, startedAt time.Time, completedAt *time.Time, batchSize, completedCount int) Graph {
	processStatus := NodeRunning
	var processDone *time.Time
	if completedCount >= batchSize {
		processStatus = NodeCompleted
		processDone = completedAt
	}
	progress := 0.0
	if batchSize > 0 {
		progress = float64(completedCount) / float64(batchSize)
	}

	nodes := []Node{
		{ID: NodeStart, Name: "Start", Type: "start", Status: NodeCompleted, StartedAt: &startedAt, CompletedAt: &startedAt},
		{ID: NodeReceiveBatch, Name: "Receive Batch", Type: "consumer", Status: NodeCompleted, StartedAt: &startedAt, CompletedAt: &startedAt},
		{ID: NodeProcessBatch, Name: "Process Batch", Type: "parallel", Status: processStatus, StartedAt: &startedAt, CompletedAt: processDone,
			Metadata: map[string]any{"batchSize": batchSize, "completedCount": completedCount}},
		{ID: NodeAggregateResults, Name: "Aggregate Results", Type: "step", Status: endStatus(status), StartedAt: completedAt, CompletedAt: completedAt},
		{ID: NodeEnd, Name: "End", Type: "end", Status: endStatus(status), StartedAt: completedAt, CompletedAt: completedAt},
	}
	edges := []Edge{
		{ID: "e1", Source: NodeStart, Target: NodeReceiveBatch, Label: "trigger"},
		{ID: "e2", Source: NodeReceiveBatch, Target: NodeProcessBatch, Label: "distribute"},
		{ID: "e3", Source: NodeProcessBatch, Target: NodeAggregateResults, Label: "collect"},
		{ID: "e4", Source: NodeAggregateResults, Target: NodeEnd, Label: "complete"},
	}

	return Graph{
		WorkflowID:   workflowID,
		WorkflowType: TypeBatchPrediction,
		Status:       status,
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
		Nodes:        nodes,
		Edges:        edges,
		Metadata: map[string]any{
			"batchSize":      batchSize,
			"completedCount": completedCount,
			"progress":       progress,
		},
	}
}

func nodeStatus(events []Event, nodeID string) NodeStatus {
	var started, completed bool
	for _, e := range events {
		if e.NodeID != nodeID {
			continue
		}
		switch e.EventType {
		case EventFailed:
			return NodeFailed
		case EventCompleted:
			completed = true
		case EventStarted:
			started = true
		}
	}
	switch {
	case completed:
		return NodeCompleted
	case started:
		return NodeRunning
	default:
		return NodePending
	}
}

func firstAt(events []Event, nodeID string, types ...EventType) *time.Time {
	matches := make([]time.Time, 0, 2)
	for _, e := range events {
		if e.NodeID != nodeID {
			continue
		}
		for _, t := range types {
			if e.EventType == t {
				matches = append(matches, e.OccurredAt)
				break
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Before(matches[j]) })
	return &matches[0]
}

func endStatus(status string) NodeStatus {
	switch status {
	case "completed":
		return NodeCompleted
	case "failed":
		return NodeFailed
	default:
		return NodePending
	}
}
