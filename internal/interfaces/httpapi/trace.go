package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var (
	apiTracer = otel.Tracer("dotmatchlens/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

// Probes and static docs are polled constantly and carry no workflow data.
var quietHandlerSpans = map[string]struct{}{
	handlerSpanPrefix + "Healthz":   {},
	handlerSpanPrefix + "Readyz":    {},
	handlerSpanPrefix + "OpenAPI":   {},
	handlerSpanPrefix + "SwaggerUI": {},
}

// startSpan opens a child span for handlers only. Helpers and middleware
// share the request span, and requests without one stay untraced.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	if !strings.HasPrefix(name, handlerSpanPrefix) {
		return false
	}
	_, quiet := quietHandlerSpans[name]
	return !quiet
}
