package gitlib

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

// gitBinary is the executable invoked for every operation.
const gitBinary = "git"

// globalArgs precede every command. With quotePath off, git prints non-ASCII
// paths verbatim instead of C-quoting them.
var globalArgs = []string{"-c", "core.quotePath=false"}

// ErrCommandFailed indicates git exited with a non-zero status.
var ErrCommandFailed = errors.New("git command failed")

// Executor runs git with the given arguments inside dir and returns stdout.
type Executor interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecExecutor is the default Executor, backed by os/exec.
type ExecExecutor struct {
	// Binary overrides the git executable. Empty means "git" on PATH.
	Binary string
}

// NewExecExecutor creates an ExecExecutor that runs git from PATH.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Run implements Executor.
func (e *ExecExecutor) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	binary := e.Binary
	if binary == "" {
		binary = gitBinary
	}

	cmd := exec.CommandContext(ctx, binary, append(slices.Clone(globalArgs), args...)...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		return nil, &GitError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    fmt.Errorf("%w: %w", ErrCommandFailed, runErr),
		}
	}

	return stdout.Bytes(), nil
}

// GitError describes a failed git invocation.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *GitError) Error() string {
	op := "git"
	if len(e.Args) > 0 {
		op = "git " + e.Args[0]
	}

	msg := op + " failed"
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *GitError) Unwrap() error {
	return e.Err
}
