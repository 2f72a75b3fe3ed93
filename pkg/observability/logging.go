package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	logKeyTraceID = "trace_id"
	logKeySpanID  = "span_id"
	logKeyService = "service"
	logKeyVersion = "version"
	logKeyMode    = "mode"

	// logEventSeverity is the span event attribute holding the record level.
	logEventSeverity = "log.severity"
)

// SpanLogHandler is an [slog.Handler] that stamps records logged inside a
// span with trace_id and span_id. Records at warning level or above are
// also added to the span as events, so a skipped repository shows up on the
// trace of the block that skipped it.
type SpanLogHandler struct {
	next slog.Handler
}

// NewSpanLogHandler wraps next. The service name, version and mode from cfg
// are attached to every record at the top level; an empty version is left
// out.
func NewSpanLogHandler(next slog.Handler, cfg Config) *SpanLogHandler {
	attrs := []slog.Attr{
		slog.String(logKeyService, cfg.ServiceName),
		slog.String(logKeyMode, string(cfg.Mode)),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String(logKeyVersion, cfg.ServiceVersion))
	}

	return &SpanLogHandler{next: next.WithAttrs(attrs)}
}

func (h *SpanLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SpanLogHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if sc := span.SpanContext(); sc.IsValid() {
		record.AddAttrs(
			slog.String(logKeyTraceID, sc.TraceID().String()),
			slog.String(logKeySpanID, sc.SpanID().String()),
		)
	}

	if record.Level >= slog.LevelWarn && span.IsRecording() {
		span.AddEvent(record.Message, trace.WithAttributes(
			attribute.String(logEventSeverity, record.Level.String()),
		))
	}

	err := h.next.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}

	return nil
}

func (h *SpanLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SpanLogHandler{next: h.next.WithAttrs(attrs)}
}

func (h *SpanLogHandler) WithGroup(name string) slog.Handler {
	return &SpanLogHandler{next: h.next.WithGroup(name)}
}
