package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tryflow/pkg/version"
)

// NewRootCommand creates the tryflow root command with all subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tryflow",
		Short: "tryflow - git activity metrics for experiment blocks",
		Long: `tryflow measures git activity (commits, lines, files, test and doc changes,
first commit of each day) across local and GitHub repositories for the time
window of an experiment block, and caches one document per block.

Commands:
  metrics   Compute or show per-block metrics
  mcp       Serve the metrics tools over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(FlagConfig, "", "config file (default: .tryflow.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().BoolP(FlagVerbose, "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP(FlagQuiet, "q", false, "suppress output")

	rootCmd.AddCommand(NewMetricsCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tryflow %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
