package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tryflow/pkg/mcp"
	"github.com/Sumatoshi-tech/tryflow/pkg/observability"
	"github.com/Sumatoshi-tech/tryflow/pkg/version"
)

const (
	metricsPath       = "/metrics"
	readHeaderTimeout = 5 * time.Second
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	return newMCPCommandWithDeps(buildRuntime)
}

func newMCPCommandWithDeps(runtimeFn runtimeFactory) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes tryflow's block metrics as tools that AI agents
can discover and invoke:
  - gitmetrics_compute: Compute (or fetch cached) metrics for an experiment block
  - gitmetrics_show: Return the cached metrics document for a block`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			rt, err := runtimeFn(cobraCmd, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer rt.Close()

			toolMetrics, metricsErr := observability.NewToolMetrics(rt.providers.Meter)
			if metricsErr != nil {
				return metricsErr
			}

			if metricsAddr != "" && rt.providers.MetricsHandler != nil {
				stop := serveMetrics(rt, metricsAddr)
				defer stop()
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Service:      rt.service,
				Repositories: rt.repos,
				Version:      version.Version,
				Logger:       rt.logger,
				Metrics:      toolMetrics,
				Tracer:       rt.providers.Tracer,
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

// serveMetrics starts the Prometheus endpoint in the background and returns
// a function that shuts it down.
func serveMetrics(rt *runtime, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, observability.ScrapeHandler(rt.providers.Tracer, rt.providers.MetricsHandler))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		listenErr := server.ListenAndServe()
		if listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			rt.logger.Error("metrics endpoint failed", "addr", addr, "error", listenErr)
		}
	}()

	rt.logger.Info("serving metrics", "addr", addr, "path", metricsPath)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = server.Shutdown(ctx)
	}
}
