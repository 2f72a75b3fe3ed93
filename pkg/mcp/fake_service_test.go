package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/tryflow/pkg/cache"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

type computeCall struct {
	key     cache.Key
	block   gitmetrics.Block
	repos   []gitmetrics.Repository
	refresh bool
}

// fakeService stores computed documents in memory.
type fakeService struct {
	mu    sync.Mutex
	docs  map[cache.Key]*gitmetrics.GitMetrics
	calls []computeCall
	err   error
}

func newFakeService() *fakeService {
	return &fakeService{docs: make(map[cache.Key]*gitmetrics.GitMetrics)}
}

func (f *fakeService) Compute(
	_ context.Context, key cache.Key, block gitmetrics.Block, repos []gitmetrics.Repository, refresh bool,
) (*gitmetrics.GitMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, computeCall{key: key, block: block, repos: repos, refresh: refresh})

	if f.err != nil {
		return nil, f.err
	}

	doc := &gitmetrics.GitMetrics{
		BlockID:      block.ID,
		ComputedAt:   fixedNow,
		Repositories: make(map[string]gitmetrics.RepoMetrics, len(repos)),
		Totals:       gitmetrics.RepoMetrics{Commits: len(repos)},
	}

	for _, repo := range repos {
		doc.Repositories[repo.Path] = gitmetrics.RepoMetrics{Commits: 1}
	}

	f.docs[key] = doc

	return doc, nil
}

func (f *fakeService) Lookup(_ context.Context, key cache.Key) (*gitmetrics.GitMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[key]
	if !ok {
		return nil, cache.ErrNotCached
	}

	return doc, nil
}

func (f *fakeService) recorded() []computeCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]computeCall, len(f.calls))
	copy(out, f.calls)

	return out
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
