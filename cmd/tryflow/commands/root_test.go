package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	assert.Subset(t, names, []string{"metrics", "mcp", "version"})

	for _, flag := range []string{FlagConfig, FlagVerbose, FlagQuiet} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestMetricsCommand_Subcommands(t *testing.T) {
	t.Parallel()

	cmd := NewMetricsCommand()

	compute, _, err := cmd.Find([]string{"compute"})
	require.NoError(t, err)

	for _, flag := range []string{flagExperiment, flagBlock, flagStart, flagEnd, flagRepo, flagRefresh, flagFormat} {
		assert.NotNil(t, compute.Flags().Lookup(flag), flag)
	}

	show, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)
	assert.Nil(t, show.Flags().Lookup(flagStart))
	assert.Equal(t, FormatTable, show.Flags().Lookup(flagFormat).DefValue)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "tryflow ")
	assert.Contains(t, out.String(), "commit:")
}
