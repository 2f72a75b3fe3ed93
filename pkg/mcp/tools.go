package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/tryflow/pkg/cache"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// Tool name constants.
const (
	ToolNameCompute = "gitmetrics_compute"
	ToolNameShow    = "gitmetrics_show"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyExperiment indicates the experiment parameter is empty.
	ErrEmptyExperiment = errors.New("experiment parameter is required and must not be empty")
	// ErrEmptyBlock indicates the block parameter is empty.
	ErrEmptyBlock = errors.New("block parameter is required and must not be empty")
	// ErrEmptyStart indicates the start parameter is empty.
	ErrEmptyStart = errors.New("start parameter is required and must not be empty")
)

// Input types (auto-generate JSON schemas via struct tags).

// ComputeInput is the input schema for the gitmetrics_compute tool.
type ComputeInput struct {
	Experiment   string   `json:"experiment"             jsonschema:"experiment identifier"`
	Block        string   `json:"block"                  jsonschema:"block identifier within the experiment"`
	Start        string   `json:"start"                  jsonschema:"block start (RFC3339 or YYYY-MM-DD)"`
	End          string   `json:"end,omitempty"          jsonschema:"block end (default: open block ending now)"`
	Repositories []string `json:"repositories,omitempty" jsonschema:"local paths, github.com URLs or owner/repo (default: configured)"`
	Refresh      bool     `json:"refresh,omitempty"      jsonschema:"recompute even when a cached document exists"`
}

// ShowInput is the input schema for the gitmetrics_show tool.
type ShowInput struct {
	Experiment string `json:"experiment" jsonschema:"experiment identifier"`
	Block      string `json:"block"      jsonschema:"block identifier within the experiment"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleCompute(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ComputeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	key, err := keyFrom(input.Experiment, input.Block)
	if err != nil {
		return errorResult(err)
	}

	if strings.TrimSpace(input.Start) == "" {
		return errorResult(ErrEmptyStart)
	}

	block, err := gitmetrics.ParseBlock(input.Block, input.Start, input.End, s.now())
	if err != nil {
		return errorResult(err)
	}

	repos := s.repos
	if len(input.Repositories) > 0 {
		repos = make([]gitmetrics.Repository, 0, len(input.Repositories))
		for _, path := range input.Repositories {
			repos = append(repos, gitmetrics.Repository{Path: path})
		}
	}

	if len(repos) == 0 {
		return errorResult(gitmetrics.ErrNoRepositories)
	}

	doc, err := s.service.Compute(ctx, key, block, repos, input.Refresh)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(doc)
}

func (s *Server) handleShow(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ShowInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	key, err := keyFrom(input.Experiment, input.Block)
	if err != nil {
		return errorResult(err)
	}

	doc, err := s.service.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrNotCached) {
			return errorResult(fmt.Errorf("%w; run %s first", err, ToolNameCompute))
		}

		return errorResult(err)
	}

	return jsonResult(doc)
}

func keyFrom(experiment, block string) (cache.Key, error) {
	if strings.TrimSpace(experiment) == "" {
		return cache.Key{}, ErrEmptyExperiment
	}

	if strings.TrimSpace(block) == "" {
		return cache.Key{}, ErrEmptyBlock
	}

	return cache.Key{ExperimentID: experiment, BlockID: block}, nil
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
