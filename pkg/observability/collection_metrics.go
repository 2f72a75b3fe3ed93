package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCollectionsTotal   = "tryflow.collections.total"
	metricCollectionDuration = "tryflow.collection.duration.seconds"
	metricRemoteRequests     = "tryflow.remote.requests.total"
	metricCacheLookups       = "tryflow.cache.lookups.total"

	attrKind     = "kind"
	attrEndpoint = "endpoint"
	attrResult   = "result"
)

// CollectionMetrics counts repository collections, hosting API requests and
// cache lookups. It satisfies the recorder interfaces of the gitmetrics
// engine, the remote collector and the cache.
type CollectionMetrics struct {
	collections    metric.Int64Counter
	duration       metric.Float64Histogram
	remoteRequests metric.Int64Counter
	cacheLookups   metric.Int64Counter
}

// NewCollectionMetrics creates the instruments from the given meter.
func NewCollectionMetrics(mt metric.Meter) (*CollectionMetrics, error) {
	collections, err := newCounter(mt, metricCollectionsTotal, "Repository collections by kind and outcome", "{collection}")
	if err != nil {
		return nil, err
	}

	duration, err := newDurationHistogram(mt, metricCollectionDuration, "Repository collection duration in seconds")
	if err != nil {
		return nil, err
	}

	remote, err := newCounter(mt, metricRemoteRequests, "Hosting API requests by endpoint", "{request}")
	if err != nil {
		return nil, err
	}

	lookups, err := newCounter(mt, metricCacheLookups, "Metrics cache lookups by result", "{lookup}")
	if err != nil {
		return nil, err
	}

	return &CollectionMetrics{
		collections:    collections,
		duration:       duration,
		remoteRequests: remote,
		cacheLookups:   lookups,
	}, nil
}

// RecordCollection records one repository collection.
func (cm *CollectionMetrics) RecordCollection(ctx context.Context, kind, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	)

	cm.collections.Add(ctx, 1, attrs)
	cm.duration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRemoteRequest records one hosting API request.
func (cm *CollectionMetrics) RecordRemoteRequest(ctx context.Context, endpoint string) {
	cm.remoteRequests.Add(ctx, 1, metric.WithAttributes(attribute.String(attrEndpoint, endpoint)))
}

// RecordCacheLookup records one cache lookup outcome.
func (cm *CollectionMetrics) RecordCacheLookup(ctx context.Context, result string) {
	cm.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

func newCounter(mt metric.Meter, name, description, unit string) (metric.Int64Counter, error) {
	counter, err := mt.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, instrumentError(name, err)
	}

	return counter, nil
}

func newDurationHistogram(mt metric.Meter, name, description string) (metric.Float64Histogram, error) {
	histogram, err := mt.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, instrumentError(name, err)
	}

	return histogram, nil
}

func instrumentError(name string, err error) error {
	return fmt.Errorf("create %s: %w", name, err)
}
