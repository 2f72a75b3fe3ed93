// Package local collects commit activity from a working tree by running the
// git binary.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/tryflow/pkg/fileclass"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitlib"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// Collector implements gitmetrics.LocalCollector.
type Collector struct {
	exec   gitlib.Executor
	logger *slog.Logger
}

// NewCollector creates a Collector. A nil executor runs git from PATH and a
// nil logger uses slog.Default.
func NewCollector(executor gitlib.Executor, logger *slog.Logger) *Collector {
	if executor == nil {
		executor = gitlib.NewExecExecutor()
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{exec: executor, logger: logger}
}

// CollectLocal counts the commits, line deltas and distinct files authored by
// the repository's configured user inside the window. When no user.email is
// configured every author's commits are counted.
func (c *Collector) CollectLocal(
	ctx context.Context, target gitmetrics.LocalTarget, window gitmetrics.Window,
) (gitmetrics.RepoMetrics, error) {
	repo := gitlib.OpenRepository(target.Path, c.exec)

	treeErr := repo.IsWorkTree(ctx)
	if treeErr != nil {
		return gitmetrics.RepoMetrics{}, fmt.Errorf("%w: %w", gitmetrics.ErrNotARepository, treeErr)
	}

	email, emailErr := repo.UserEmail(ctx)
	if emailErr != nil {
		c.logger.WarnContext(ctx, "cannot read user.email, counting all authors",
			"repo", target.Path, "error", emailErr)
	} else if email == "" {
		c.logger.WarnContext(ctx, "user.email is not configured, counting all authors", "repo", target.Path)
	}

	opts := gitlib.LogOptions{
		Branch: target.Branch,
		Author: email,
		After:  window.Start,
		Before: window.End,
	}

	commits, logErr := repo.Log(ctx, opts)
	if logErr != nil {
		return gitmetrics.RepoMetrics{}, wrapGitErr(logErr)
	}

	stats, statErr := repo.NumStat(ctx, opts)
	if statErr != nil {
		return gitmetrics.RepoMetrics{}, wrapGitErr(statErr)
	}

	return summarize(commits, stats, window), nil
}

// summarize builds RepoMetrics from commits inside the window and the numstat
// rows belonging to those commits.
func summarize(commits []gitlib.Commit, stats []gitlib.FileStat, window gitmetrics.Window) gitmetrics.RepoMetrics {
	counted := make(map[gitlib.Hash]struct{}, len(commits))
	times := make([]time.Time, 0, len(commits))

	for _, commit := range commits {
		if !window.Contains(commit.When) {
			continue
		}

		counted[commit.Hash] = struct{}{}
		times = append(times, commit.When)
	}

	var (
		tally fileclass.Tally
		rm    gitmetrics.RepoMetrics
	)

	for _, stat := range stats {
		if _, ok := counted[stat.Hash]; !ok {
			continue
		}

		rm.LinesAdded += stat.Added
		rm.LinesRemoved += stat.Removed
		tally.Add(stat.Path)
	}

	rm.Commits = len(counted)
	rm.FilesChanged = tally.Files()
	rm.TestFilesChanged = tally.TestFiles()
	rm.DocFilesChanged = tally.DocFiles()
	rm.Languages = tally.Languages()
	rm.AvgCommitsPerDay = gitmetrics.AvgCommitsPerDay(rm.Commits, window)
	rm.FirstCommitTimes = gitmetrics.FirstCommitPerDay(times)

	return rm
}

func wrapGitErr(err error) error {
	if errors.Is(err, gitlib.ErrCommandFailed) {
		return fmt.Errorf("%w: %w", gitmetrics.ErrVCSCommand, err)
	}

	return err
}
