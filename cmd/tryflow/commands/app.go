// Package commands implements CLI command handlers for tryflow.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tryflow/pkg/cache"
	"github.com/Sumatoshi-tech/tryflow/pkg/collector/local"
	"github.com/Sumatoshi-tech/tryflow/pkg/collector/remote"
	"github.com/Sumatoshi-tech/tryflow/pkg/config"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitlib"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
	"github.com/Sumatoshi-tech/tryflow/pkg/observability"
	"github.com/Sumatoshi-tech/tryflow/pkg/persist"
	"github.com/Sumatoshi-tech/tryflow/pkg/version"
)

// Persistent flag names shared by all subcommands.
const (
	FlagConfig  = "config"
	FlagVerbose = "verbose"
	FlagQuiet   = "quiet"

	dotEnvFile      = ".env"
	shutdownTimeout = 5 * time.Second
)

// metricsService computes and looks up cached block documents.
type metricsService interface {
	Compute(
		ctx context.Context, key cache.Key, block gitmetrics.Block, repos []gitmetrics.Repository, refresh bool,
	) (*gitmetrics.GitMetrics, error)
	Lookup(ctx context.Context, key cache.Key) (*gitmetrics.GitMetrics, error)
}

// runtime is everything a command needs after config and telemetry are up.
type runtime struct {
	service   metricsService
	repos     []gitmetrics.Repository
	logger    *slog.Logger
	providers observability.Providers
}

// Close flushes telemetry.
func (rt *runtime) Close() {
	if rt.providers.Shutdown == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := rt.providers.Shutdown(ctx)
	if shutdownErr != nil {
		rt.logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}

// runtimeFactory builds a runtime for a command invocation.
type runtimeFactory func(cmd *cobra.Command, mode observability.AppMode) (*runtime, error)

// buildRuntime loads configuration and wires collectors, engine and cache.
func buildRuntime(cmd *cobra.Command, mode observability.AppMode) (*runtime, error) {
	dotEnvErr := config.LoadDotEnv(dotEnvFile)
	if dotEnvErr != nil {
		return nil, dotEnvErr
	}

	configPath := flagValue(cmd, FlagConfig)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	providers, err := initObservability(cmd, cfg, mode)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		repos:     cfg.Repositories,
		logger:    providers.Logger,
		providers: providers,
	}

	service, err := buildService(cfg, providers)
	if err != nil {
		rt.Close()

		return nil, err
	}

	rt.service = service

	return rt, nil
}

func initObservability(cmd *cobra.Command, cfg *config.Config, mode observability.AppMode) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.JSON

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	if obsCfg.Mode == observability.ModeMCP {
		obsCfg.LogJSON = true
		obsCfg.Prometheus = true
	}

	switch {
	case flagValue(cmd, FlagVerbose) == "true":
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	case flagValue(cmd, FlagQuiet) == "true":
		obsCfg.LogLevel = slog.LevelError
	}

	obsCfg.LogOutput = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

func buildService(cfg *config.Config, providers observability.Providers) (*cache.Cached, error) {
	recorder, err := observability.NewCollectionMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create collection metrics: %w", err)
	}

	localCollector := local.NewCollector(gitlib.NewExecExecutor(), providers.Logger)

	remoteCollector, err := remote.NewCollector(remote.Options{
		Token:      cfg.GitHubToken(os.Getenv),
		BaseURL:    cfg.GitHub.BaseURL,
		UserAgent:  "tryflow/" + version.Version,
		PageSize:   cfg.GitHub.PageSize,
		MaxPages:   cfg.GitHub.MaxPages,
		SampleSize: cfg.GitHub.SampleSize,
		Timeout:    cfg.GitHub.Timeout,
		Recorder:   recorder,
	}, providers.Logger)
	if err != nil {
		return nil, fmt.Errorf("create remote collector: %w", err)
	}

	engine := gitmetrics.NewEngine(localCollector, remoteCollector,
		gitmetrics.WithLogger(providers.Logger),
		gitmetrics.WithTracer(providers.Tracer),
		gitmetrics.WithRecorder(recorder),
	)

	var codec persist.Codec = persist.NewJSONCodec()
	if cfg.Cache.Compress {
		codec = persist.NewLZ4Codec()
	}

	store, err := cache.NewStore(cfg.Cache.Dir, codec)
	if err != nil {
		return nil, fmt.Errorf("open metrics cache: %w", err)
	}

	return cache.NewCached(engine, store,
		cache.WithMemoryEntries(cfg.Cache.MemoryEntries),
		cache.WithCacheLogger(providers.Logger),
		cache.WithLookupRecorder(recorder),
	), nil
}

// flagValue returns a local or inherited flag value, or "" when undefined.
func flagValue(cmd *cobra.Command, name string) string {
	flag := cmd.Flag(name)
	if flag == nil {
		return ""
	}

	return flag.Value.String()
}

// ErrMissingFlag is returned when a required flag is empty.
var ErrMissingFlag = errors.New("required flag not set")
