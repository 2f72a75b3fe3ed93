package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricToolCalls    = "tryflow.tool.calls.total"
	metricToolDuration = "tryflow.tool.call.duration.seconds"
	metricToolErrors   = "tryflow.tool.errors.total"
	metricToolInflight = "tryflow.tool.calls.inflight"

	attrTool   = "tool"
	attrStatus = "status"

	// StatusOK marks a successful tool call.
	StatusOK = "ok"
	// StatusError marks a failed tool call.
	StatusError = "error"
)

// durationBucketBoundaries covers 10ms to 600s: a cached lookup returns in
// milliseconds while a remote repository walk can take minutes.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// ToolMetrics counts MCP tool calls, their failures, durations and how many
// are running.
type ToolMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewToolMetrics creates the tool call instruments from the given meter.
func NewToolMetrics(mt metric.Meter) (*ToolMetrics, error) {
	calls, err := newCounter(mt, metricToolCalls, "MCP tool calls by tool and status", "{call}")
	if err != nil {
		return nil, err
	}

	duration, err := newDurationHistogram(mt, metricToolDuration, "MCP tool call duration in seconds")
	if err != nil {
		return nil, err
	}

	failures, err := newCounter(mt, metricToolErrors, "MCP tool calls that failed", "{call}")
	if err != nil {
		return nil, err
	}

	inflight, err := mt.Int64UpDownCounter(metricToolInflight,
		metric.WithDescription("MCP tool calls in progress"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, instrumentError(metricToolInflight, err)
	}

	return &ToolMetrics{calls: calls, duration: duration, errors: failures, inflight: inflight}, nil
}

// Start marks a call to tool as in progress. The returned function ends it,
// recording the duration and whether the call failed.
func (tm *ToolMetrics) Start(ctx context.Context, tool string) func(failed bool) {
	began := time.Now()
	toolAttr := attribute.String(attrTool, tool)

	tm.inflight.Add(ctx, 1, metric.WithAttributes(toolAttr))

	return func(failed bool) {
		tm.inflight.Add(ctx, -1, metric.WithAttributes(toolAttr))

		status := StatusOK
		if failed {
			status = StatusError

			tm.errors.Add(ctx, 1, metric.WithAttributes(toolAttr))
		}

		attrs := metric.WithAttributes(toolAttr, attribute.String(attrStatus, status))
		tm.calls.Add(ctx, 1, attrs)
		tm.duration.Record(ctx, time.Since(began).Seconds(), attrs)
	}
}
