package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WorkflowMetrics records prediction workflow counters through the global
// OpenTelemetry meter provider (exported by Uptrace when enabled).
type WorkflowMetrics struct {
	requested   metric.Int64Counter
	completed   metric.Int64Counter
	failed      metric.Int64Counter
	duplicates  metric.Int64Counter
	consumed    metric.Int64Counter
	toolCalls   metric.Int64Counter
	sagaSeconds metric.Float64Histogram
	agentMillis metric.Float64Histogram
}

func NewWorkflowMetrics() *WorkflowMetrics {
	meter := otel.Meter("dotmatchlens/internal/usecase")
	m := &WorkflowMetrics{}
	// Instrument construction only fails on invalid names; the noop fallbacks keep recording safe.
	m.requested, _ = meter.Int64Counter("dotmatchlens.predictions.requested", metric.WithDescription("Prediction workflows requested"))
	m.completed, _ = meter.Int64Counter("dotmatchlens.predictions.completed", metric.WithDescription("Prediction workflows completed"))
	m.failed, _ = meter.Int64Counter("dotmatchlens.predictions.failed", metric.WithDescription("Prediction workflows failed"))
	m.duplicates, _ = meter.Int64Counter("dotmatchlens.saga.duplicate_events", metric.WithDescription("Saga events ignored as duplicates"))
	m.consumed, _ = meter.Int64Counter("dotmatchlens.bus.messages_consumed", metric.WithDescription("Bus messages handled"))
	m.toolCalls, _ = meter.Int64Counter("dotmatchlens.agent.tool_calls", metric.WithDescription("Agent tool invocations"))
	m.sagaSeconds, _ = meter.Float64Histogram("dotmatchlens.saga.duration", metric.WithUnit("s"), metric.WithDescription("Time from request to completion"))
	m.agentMillis, _ = meter.Float64Histogram("dotmatchlens.agent.duration", metric.WithUnit("ms"), metric.WithDescription("Agent invocation latency"))
	return m
}

func (m *WorkflowMetrics) PredictionRequested(ctx context.Context) {
	if m == nil || m.requested == nil {
		return
	}
	m.requested.Add(ctx, 1)
}

func (m *WorkflowMetrics) PredictionFinished(ctx context.Context, success bool, d time.Duration) {
	if m == nil {
		return
	}
	if success && m.completed != nil {
		m.completed.Add(ctx, 1)
	}
	if !success && m.failed != nil {
		m.failed.Add(ctx, 1)
	}
	if m.sagaSeconds != nil && d > 0 {
		m.sagaSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
	}
}

func (m *WorkflowMetrics) DuplicateEvent(ctx context.Context, topic string) {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (m *WorkflowMetrics) MessageConsumed(ctx context.Context, topic string, success bool) {
	if m == nil || m.consumed == nil {
		return
	}
	m.consumed.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic), attribute.Bool("success", success)))
}

func (m *WorkflowMetrics) ToolCalled(ctx context.Context, tool string, success bool) {
	if m == nil || m.toolCalls == nil {
		return
	}
	m.toolCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool), attribute.Bool("success", success)))
}

func (m *WorkflowMetrics) AgentInvoked(ctx context.Context, kind string, d time.Duration) {
	if m == nil || m.agentMillis == nil {
		return
	}
	m.agentMillis.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attribute.String("kind", kind)))
}
