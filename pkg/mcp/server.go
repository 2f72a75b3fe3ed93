// Package mcp implements a Model Context Protocol server exposing tryflow's
// per-block git metrics as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/tryflow/pkg/cache"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
	"github.com/Sumatoshi-tech/tryflow/pkg/observability"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "tryflow"
	// defaultServerVersion is reported when ServerDeps.Version is empty.
	defaultServerVersion = "dev"

	// toolCount is the expected number of registered tools.
	toolCount = 2
)

// MetricsService computes and looks up cached block documents.
// *cache.Cached implements it.
type MetricsService interface {
	Compute(
		ctx context.Context, key cache.Key, block gitmetrics.Block, repos []gitmetrics.Repository, refresh bool,
	) (*gitmetrics.GitMetrics, error)
	Lookup(ctx context.Context, key cache.Key) (*gitmetrics.GitMetrics, error)
}

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Service answers the tool calls. Required.
	Service MetricsService

	// Repositories is used when a compute call names none.
	Repositories []gitmetrics.Repository

	// Version is the implementation version advertised to clients.
	Version string

	// Now is the clock used to resolve relative and open-ended dates.
	Now func() time.Time

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional tool call recorder. Nil disables per-tool metrics.
	Metrics *observability.ToolMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with tryflow tool registrations.
type Server struct {
	inner   *mcpsdk.Server
	service MetricsService
	repos   []gitmetrics.Repository
	now     func() time.Time
	logger  *slog.Logger
	metrics *observability.ToolMetrics
	tracer  trace.Tracer

	mu    sync.RWMutex
	tools []string
}

// NewServer creates a new MCP server with all tryflow tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	version := deps.Version
	if version == "" {
		version = defaultServerVersion
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version,
		},
		opts,
	)

	srv := &Server{
		inner:   inner,
		service: deps.Service,
		repos:   deps.Repositories,
		now:     deps.Now,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		tools:   make([]string, 0, toolCount),
	}

	if srv.now == nil {
		srv.now = time.Now
	}

	if srv.logger == nil {
		srv.logger = slog.Default()
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all tryflow MCP tools to the server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameCompute,
		Description: computeToolDescription,
	}, withMetrics(s.metrics, ToolNameCompute, withTracing(s.tracer, ToolNameCompute, s.handleCompute)))

	s.trackTool(ToolNameCompute)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameShow,
		Description: showToolDescription,
	}, withMetrics(s.metrics, ToolNameShow, withTracing(s.tracer, ToolNameShow, s.handleShow)))

	s.trackTool(ToolNameShow)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record call metrics per invocation.
func withMetrics[Input any](
	metrics *observability.ToolMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		done := metrics.Start(ctx, toolName)

		result, output, err := handler(ctx, req, input)
		done(err != nil || (result != nil && result.IsError))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	computeToolDescription = "Compute git activity metrics (commits, lines, files, test and doc " +
		"files, first commit per day) for one experiment block across the configured repositories. " +
		"Returns the cached document unless refresh is set."

	showToolDescription = "Return the cached git metrics document for an experiment block " +
		"without collecting anything."
)
