// Package gitlib runs the git binary against a working tree and parses its
// commit and numstat output.
package gitlib

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotWorkTree indicates the path is not inside a git working tree.
var ErrNotWorkTree = errors.New("not inside a git working tree")

// isoLayout is the timestamp layout passed to --after and --before.
const isoLayout = time.RFC3339

// Repository is a git working tree on disk.
type Repository struct {
	path string
	exec Executor
}

// OpenRepository returns a Repository for path. It does not touch the
// filesystem; call IsWorkTree to verify the path.
func OpenRepository(path string, executor Executor) *Repository {
	if executor == nil {
		executor = NewExecExecutor()
	}

	return &Repository{path: path, exec: executor}
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// IsWorkTree verifies that the path is inside a working tree.
func (r *Repository) IsWorkTree(ctx context.Context) error {
	out, err := r.exec.Run(ctx, r.path, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotWorkTree, r.path, err)
	}

	if strings.TrimSpace(string(out)) != "true" {
		return fmt.Errorf("%w: %s", ErrNotWorkTree, r.path)
	}

	return nil
}

// UserEmail returns the configured user.email, or "" when it is unset.
func (r *Repository) UserEmail(ctx context.Context) (string, error) {
	out, err := r.exec.Run(ctx, r.path, "config", "user.email")
	if err != nil {
		var gitErr *GitError
		// git config exits 1 with empty stderr when the key is missing.
		if errors.As(err, &gitErr) && gitErr.Stderr == "" {
			return "", nil
		}

		return "", fmt.Errorf("read user.email: %w", err)
	}

	return string(bytes.TrimSpace(out)), nil
}

// LogOptions selects the commits for Log and NumStat.
type LogOptions struct {
	// Branch is the revision to walk. Empty means HEAD.
	Branch string
	// Author restricts commits to this author email. Empty means all authors.
	Author string
	After  time.Time
	Before time.Time
}

func (o LogOptions) args(format string, extra ...string) []string {
	args := []string{"log"}

	if o.Branch != "" {
		args = append(args, o.Branch)
	}

	args = append(args,
		"--after="+o.After.Format(isoLayout),
		"--before="+o.Before.Format(isoLayout),
	)
	args = append(args, extra...)
	args = append(args, "--format="+format)

	if o.Author != "" {
		args = append(args, "--fixed-strings", "--author="+o.Author)
	}

	// Keep a branch name from being read as a path.
	return append(args, "--")
}
