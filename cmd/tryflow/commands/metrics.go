package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tryflow/pkg/cache"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
	"github.com/Sumatoshi-tech/tryflow/pkg/observability"
)

const (
	flagExperiment = "experiment"
	flagBlock      = "block"
	flagStart      = "start"
	flagEnd        = "end"
	flagRefresh    = "refresh"
	flagFormat     = "format"
	flagRepo       = "repo"
)

// metricsOptions holds flag values shared by the metrics subcommands.
type metricsOptions struct {
	experiment string
	block      string
	start      string
	end        string
	repos      []string
	refresh    bool
	format     string
}

// MetricsCommand groups the metrics subcommands.
type MetricsCommand struct {
	opts      metricsOptions
	runtimeFn runtimeFactory
	now       func() time.Time
}

// NewMetricsCommand creates the metrics command with compute and show subcommands.
func NewMetricsCommand() *cobra.Command {
	return newMetricsCommandWithDeps(buildRuntime, time.Now)
}

func newMetricsCommandWithDeps(runtimeFn runtimeFactory, now func() time.Time) *cobra.Command {
	mc := &MetricsCommand{runtimeFn: runtimeFn, now: now}

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compute and inspect per-block git activity metrics",
	}

	cmd.AddCommand(mc.computeCommand())
	cmd.AddCommand(mc.showCommand())

	return cmd
}

func (mc *MetricsCommand) computeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute metrics for an experiment block (cached unless --refresh)",
		Long: `Compute commit, line, file, test and doc counts plus the first commit of
each day for every configured repository within the block's time window.

Repositories come from the config file unless --repo is given. Each may be a
local path, a github.com URL, or owner/repo shorthand.`,
		Args: cobra.NoArgs,
		RunE: mc.runCompute,
	}

	mc.registerKeyFlags(cmd)
	cmd.Flags().StringVar(&mc.opts.start, flagStart, "", "Block start (RFC3339, YYYY-MM-DD, or a duration like 72h before now)")
	cmd.Flags().StringVar(&mc.opts.end, flagEnd, "", "Block end (default: open block ending now)")
	cmd.Flags().StringSliceVar(&mc.opts.repos, flagRepo, nil, "Repositories to measure (overrides config)")
	cmd.Flags().BoolVar(&mc.opts.refresh, flagRefresh, false, "Recompute even when a cached document exists")

	return cmd
}

func (mc *MetricsCommand) showCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the cached metrics document for an experiment block",
		Args:  cobra.NoArgs,
		RunE:  mc.runShow,
	}

	mc.registerKeyFlags(cmd)

	return cmd
}

func (mc *MetricsCommand) registerKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&mc.opts.experiment, flagExperiment, "e", "", "Experiment identifier")
	cmd.Flags().StringVarP(&mc.opts.block, flagBlock, "b", "", "Block identifier")
	cmd.Flags().StringVar(&mc.opts.format, flagFormat, FormatTable, "Output format: json, yaml, table")
}

func (mc *MetricsCommand) key() (cache.Key, error) {
	if strings.TrimSpace(mc.opts.experiment) == "" {
		return cache.Key{}, fmt.Errorf("%w: --%s", ErrMissingFlag, flagExperiment)
	}

	if strings.TrimSpace(mc.opts.block) == "" {
		return cache.Key{}, fmt.Errorf("%w: --%s", ErrMissingFlag, flagBlock)
	}

	return cache.Key{ExperimentID: mc.opts.experiment, BlockID: mc.opts.block}, nil
}

func (mc *MetricsCommand) runCompute(cmd *cobra.Command, _ []string) error {
	key, err := mc.key()
	if err != nil {
		return err
	}

	if strings.TrimSpace(mc.opts.start) == "" {
		return fmt.Errorf("%w: --%s", ErrMissingFlag, flagStart)
	}

	formatErr := validateFormat(mc.opts.format)
	if formatErr != nil {
		return formatErr
	}

	now := mc.now()

	block, err := gitmetrics.ParseBlock(mc.opts.block, mc.opts.start, mc.opts.end, now)
	if err != nil {
		return err
	}

	rt, err := mc.runtimeFn(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer rt.Close()

	repos := rt.repos
	if len(mc.opts.repos) > 0 {
		repos = make([]gitmetrics.Repository, 0, len(mc.opts.repos))
		for _, path := range mc.opts.repos {
			repos = append(repos, gitmetrics.Repository{Path: path})
		}
	}

	if len(repos) == 0 {
		return gitmetrics.ErrNoRepositories
	}

	rt.logger.Debug("computing metrics",
		"experiment.id", key.ExperimentID, "block.id", key.BlockID, "repositories", len(repos))

	doc, err := rt.service.Compute(cmd.Context(), key, block, repos, mc.opts.refresh)
	if err != nil {
		return fmt.Errorf("compute metrics for %s: %w", key, err)
	}

	return writeDocument(cmd.OutOrStdout(), doc, mc.opts.format, now)
}

func (mc *MetricsCommand) runShow(cmd *cobra.Command, _ []string) error {
	key, err := mc.key()
	if err != nil {
		return err
	}

	formatErr := validateFormat(mc.opts.format)
	if formatErr != nil {
		return formatErr
	}

	rt, err := mc.runtimeFn(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := rt.service.Lookup(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("show metrics for %s: %w", key, err)
	}

	return writeDocument(cmd.OutOrStdout(), doc, mc.opts.format, mc.now())
}
