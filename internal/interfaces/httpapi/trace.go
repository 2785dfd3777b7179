package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var apiTracer = otel.Tracer("live-tracker/internal/interfaces/httpapi")

// tracedSpanPrefixes are the only helper spans worth recording under a request span.
var tracedSpanPrefixes = []string{
	"httpapi.Handler.",
	"httpapi.dashboardRenderer.",
}

// startSpan returns a noop span outside a traced request, so /healthz and
// other filtered routes never produce orphan roots.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noop.Span{}
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	for _, prefix := range tracedSpanPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
