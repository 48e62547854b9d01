// Package logger provides slog handlers that enrich records with request scoped values.
package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// AttrExtractor returns the attributes a context contributes to a record, or nil.
type AttrExtractor func(ctx context.Context) []slog.Attr

// ContextHandler decorates a slog.Handler with attributes pulled from the record context.
type ContextHandler struct {
	slog.Handler
	extractors []AttrExtractor
}

// NewContextHandler wraps handler. Without extractors it adds the OpenTelemetry
// trace and span ids and the chi request id.
func NewContextHandler(handler slog.Handler, extractors ...AttrExtractor) *ContextHandler {
	if len(extractors) == 0 {
		extractors = []AttrExtractor{TraceAttrs, RequestIDAttrs}
	}
	return &ContextHandler{Handler: handler, extractors: extractors}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, extract := range h.extractors {
		r.AddAttrs(extract(ctx)...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *ContextHandler) WithGroup(group string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(group), extractors: h.extractors}
}

// TraceAttrs yields trace_id and span_id of a valid span.
func TraceAttrs(ctx context.Context) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
}

// RequestIDAttrs yields request_id set by the chi request id middleware.
func RequestIDAttrs(ctx context.Context) []slog.Attr {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return []slog.Attr{slog.String("request_id", reqID)}
	}
	return nil
}
