package gitmetrics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/tryflow/pkg/repoid"
)

// Collection kinds reported to the Recorder.
const (
	KindLocal  = "local"
	KindRemote = "remote"
)

// Collection outcomes reported to the Recorder.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
)

const spanCollectRepo = "gitmetrics.collect_repo"

// LocalTarget is a repository in a local working tree.
type LocalTarget struct {
	Path   string
	Branch string
}

// RemoteTarget is a repository on the hosting service.
type RemoteTarget struct {
	Owner  string
	Repo   string
	Branch string
}

// LocalCollector gathers metrics from a local working tree.
type LocalCollector interface {
	CollectLocal(ctx context.Context, target LocalTarget, window Window) (RepoMetrics, error)
}

// RemoteCollector gathers metrics through the hosting API.
type RemoteCollector interface {
	CollectRemote(ctx context.Context, target RemoteTarget, window Window) (RepoMetrics, error)
}

// Recorder receives one observation per repository collection.
type Recorder interface {
	RecordCollection(ctx context.Context, kind, status string, duration time.Duration)
}

// Engine computes GitMetrics for a block across configured repositories.
// Repositories are collected one at a time.
type Engine struct {
	local    LocalCollector
	remote   RemoteCollector
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
	now      func() time.Time
	dirExist func(path string) bool
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for per-repository warnings.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithTracer sets the tracer used for per-repository spans.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = tracer }
}

// WithRecorder sets the collection metrics recorder.
func WithRecorder(recorder Recorder) EngineOption {
	return func(e *Engine) { e.recorder = recorder }
}

// WithClock sets the time source for open blocks and computedAt.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithDirCheck replaces the directory existence check used to warn about
// ambiguous "owner/repo" entries.
func WithDirCheck(exists func(path string) bool) EngineOption {
	return func(e *Engine) { e.dirExist = exists }
}

// NewEngine creates an Engine dispatching to the given collectors.
func NewEngine(local LocalCollector, remote RemoteCollector, opts ...EngineOption) *Engine {
	eng := &Engine{
		local:    local,
		remote:   remote,
		logger:   slog.Default(),
		tracer:   nooptrace.NewTracerProvider().Tracer(""),
		now:      time.Now,
		dirExist: isDir,
	}

	for _, opt := range opts {
		opt(eng)
	}

	return eng
}

// ComputeMetrics collects every repository over the block window and returns
// the combined document. A repository that fails is logged and left out of
// both Repositories and Totals; it never aborts the batch. Repositories are
// keyed by their resolved identifier, so entries naming the same repository
// are collected once and the first entry wins.
func (e *Engine) ComputeMetrics(ctx context.Context, block Block, repos []Repository) (*GitMetrics, error) {
	if len(repos) == 0 {
		return nil, ErrNoRepositories
	}

	window := block.Window(e.now())
	results := make(map[string]RepoMetrics, len(repos))
	seen := make(map[string]struct{}, len(repos))

	for _, repo := range repos {
		id := repoid.Resolve(repo.Path)
		key := id.String()

		if _, dup := seen[key]; dup {
			e.logger.WarnContext(ctx, "duplicate repository entry, collected once",
				"repo", repo.Path, "key", key)

			continue
		}

		seen[key] = struct{}{}

		rm, err := e.collectOne(ctx, repo, id, window)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping repository",
				"repo", repo.Path, "reason", FailureReason(err), "error", err)

			continue
		}

		results[key] = rm
	}

	return &GitMetrics{
		BlockID:      block.ID,
		ComputedAt:   e.now(),
		DateRange:    DateRange{Start: window.Start, End: window.End},
		Repositories: results,
		Totals:       Aggregate(results),
	}, nil
}

func (e *Engine) collectOne(ctx context.Context, repo Repository, id repoid.Identifier, window Window) (RepoMetrics, error) {
	if repoid.IsShorthand(repo.Path) && e.dirExist(repo.Path) {
		e.logger.WarnContext(ctx, "ambiguous repository entry, treating as remote",
			"repo", repo.Path, "hint", "prefix with ./ to use the local directory")
	}

	ctx, span := e.tracer.Start(ctx, spanCollectRepo,
		trace.WithAttributes(attribute.String("repo", repo.Path)),
	)
	defer span.End()

	start := time.Now()

	var (
		kind string
		rm   RepoMetrics
		err  error
	)

	switch target := id.(type) {
	case repoid.Local:
		kind = KindLocal
		rm, err = e.local.CollectLocal(ctx, LocalTarget{Path: target.Path, Branch: repo.Branch}, window)
	case repoid.Remote:
		kind = KindRemote
		rm, err = e.remote.CollectRemote(ctx, RemoteTarget{
			Owner: target.Owner, Repo: target.Repo, Branch: repo.Branch,
		}, window)
	default:
		panic(fmt.Sprintf("gitmetrics: unhandled identifier %T", id))
	}

	span.SetAttributes(attribute.String("repo.kind", kind))

	status := StatusOK
	if err != nil {
		status = StatusSkipped

		span.RecordError(err)
		span.SetStatus(codes.Error, FailureReason(err))
	}

	if e.recorder != nil {
		e.recorder.RecordCollection(ctx, kind, status, time.Since(start))
	}

	if err != nil {
		return RepoMetrics{}, fmt.Errorf("collect %s: %w", id, err)
	}

	return rm, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
