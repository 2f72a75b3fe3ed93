package mcp

import (
	"context"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

func connect(t *testing.T, srv *Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	session := connect(t, newTestServer(newFakeService()))

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, toolsResult)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
	}

	assert.ElementsMatch(t, []string{ToolNameCompute, ToolNameShow}, toolNames)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}
}

func TestMCPServer_InMemoryTransport_ComputeThenShow(t *testing.T) {
	t.Parallel()

	service := newFakeService()
	session := connect(t, newTestServer(service, gitmetrics.Repository{Path: "/src/app"}))

	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: ToolNameCompute,
		Arguments: map[string]any{
			"experiment": "exp",
			"block":      "b1",
			"start":      "2024-03-01",
			"end":        "2024-03-08",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"blockId": "b1"`)
	assert.Len(t, service.recorded(), 1)

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: ToolNameShow,
		Arguments: map[string]any{
			"experiment": "exp",
			"block":      "b1",
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Len(t, service.recorded(), 1)
}

func TestMCPServer_InMemoryTransport_ShowNotCached(t *testing.T) {
	t.Parallel()

	session := connect(t, newTestServer(newFakeService()))

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: ToolNameShow,
		Arguments: map[string]any{
			"experiment": "exp",
			"block":      "missing",
		},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not cached")
}

func TestMCPServer_TracingAppendsTraceID(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv := NewServer(ServerDeps{
		Service:      newFakeService(),
		Repositories: []gitmetrics.Repository{{Path: "/src/app"}},
		Now:          func() time.Time { return fixedNow },
		Tracer:       tp.Tracer("test"),
	})
	session := connect(t, srv)

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: ToolNameShow,
		Arguments: map[string]any{
			"experiment": "exp",
			"block":      "b1",
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Content, 2)

	trace, ok := result.Content[1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, trace.Text, traceIDMetaKey+"=")
}
