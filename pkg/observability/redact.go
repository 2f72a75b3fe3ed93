package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// attributeRule decides the fate of span attribute keys it matches. A rule
// ending in "." matches a prefix; any other rule matches one key exactly.
type attributeRule struct {
	match string
	allow bool
}

// attributeRules are checked in order and the first match wins. Keys no rule
// matches are dropped, so author identities and tokens never reach the
// exporter unless a rule lets them through.
var attributeRules = []attributeRule{
	{match: "author", allow: false},
	{match: "author.", allow: false},
	{match: "user.", allow: false},
	{match: "email", allow: false},
	{match: "token", allow: false},
	{match: "github.token", allow: false},
	{match: "repo", allow: true},
	{match: "repo.", allow: true},
	{match: "error", allow: true},
	{match: "error.", allow: true},
	{match: "tryflow.", allow: true},
	{match: "block.", allow: true},
	{match: "experiment.", allow: true},
	{match: "cache.", allow: true},
	{match: "http.", allow: true},
	{match: "mcp.", allow: true},
}

func (r attributeRule) matches(key string) bool {
	if strings.HasSuffix(r.match, ".") {
		return strings.HasPrefix(key, r.match)
	}

	return key == r.match
}

// attributeAllowed reports whether key may be exported.
func attributeAllowed(key string) bool {
	for _, rule := range attributeRules {
		if rule.matches(key) {
			return rule.allow
		}
	}

	return false
}

// redactingProcessor removes disallowed attributes from ended spans before
// handing them to the exporting processor.
type redactingProcessor struct {
	next   sdktrace.SpanProcessor
	logger *slog.Logger
	warned sync.Map
}

// NewRedactingProcessor wraps next so that only allowed attributes are
// exported. With a non-nil logger each dropped key is reported once.
func NewRedactingProcessor(next sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &redactingProcessor{next: next, logger: logger}
}

func (p *redactingProcessor) OnStart(parent context.Context, span sdktrace.ReadWriteSpan) {
	p.next.OnStart(parent, span)
}

func (p *redactingProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	original := span.Attributes()
	kept := make([]attribute.KeyValue, 0, len(original))

	for _, kv := range original {
		key := string(kv.Key)
		if attributeAllowed(key) {
			kept = append(kept, kv)

			continue
		}

		p.reportDropped(key)
	}

	if len(kept) == len(original) {
		p.next.OnEnd(span)

		return
	}

	p.next.OnEnd(&redactedSpan{
		ReadOnlySpan: span,
		attrs:        kept,
		dropped:      span.DroppedAttributes() + len(original) - len(kept),
	})
}

func (p *redactingProcessor) Shutdown(ctx context.Context) error {
	err := p.next.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown span processor: %w", err)
	}

	return nil
}

func (p *redactingProcessor) ForceFlush(ctx context.Context) error {
	err := p.next.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("flush span processor: %w", err)
	}

	return nil
}

func (p *redactingProcessor) reportDropped(key string) {
	if p.logger == nil {
		return
	}

	if _, seen := p.warned.LoadOrStore(key, struct{}{}); seen {
		return
	}

	p.logger.Warn("span attribute dropped", "key", key)
}

// redactedSpan is an ended span seen through the attributes that survived.
type redactedSpan struct {
	sdktrace.ReadOnlySpan

	attrs   []attribute.KeyValue
	dropped int
}

func (s *redactedSpan) Attributes() []attribute.KeyValue { return s.attrs }

func (s *redactedSpan) DroppedAttributes() int { return s.dropped }
