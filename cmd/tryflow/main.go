// Package main provides the entry point for the tryflow CLI tool.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Sumatoshi-tech/tryflow/cmd/tryflow/commands"
	"github.com/Sumatoshi-tech/tryflow/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the root command with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := commands.NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}
