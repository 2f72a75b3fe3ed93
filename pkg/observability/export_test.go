package observability

import "go.opentelemetry.io/otel/attribute"

// ResourceAttributes exposes resourceAttributes for tests.
func ResourceAttributes(cfg Config) []attribute.KeyValue {
	return resourceAttributes(cfg)
}
