package cache

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// Lookup outcomes reported to a LookupRecorder.
const (
	LookupMemory  = "memory"
	LookupDisk    = "disk"
	LookupMiss    = "miss"
	LookupInvalid = "invalid"
	LookupRefresh = "refresh"
)

// Computer produces a fresh document for a block.
type Computer interface {
	ComputeMetrics(ctx context.Context, block gitmetrics.Block, repos []gitmetrics.Repository) (*gitmetrics.GitMetrics, error)
}

// LookupRecorder is notified of the outcome of every cache lookup.
type LookupRecorder interface {
	RecordCacheLookup(ctx context.Context, result string)
}

// memoryEntry is a document held in memory together with the file it was
// read from or written to.
type memoryEntry struct {
	doc  *gitmetrics.GitMetrics
	info os.FileInfo
}

// matches reports whether the document file is still the one this entry
// was taken from. Saves replace the file by rename, so another writer shows
// up as a different file, modification time or size.
func (e memoryEntry) matches(info os.FileInfo) bool {
	return os.SameFile(e.info, info) && e.info.ModTime().Equal(info.ModTime()) && e.info.Size() == info.Size()
}

// Cached fronts a Computer with a memory LRU and a Store. Memory entries are
// checked against the document file on every lookup, so a refresh made by
// another process sharing the directory is picked up.
type Cached struct {
	computer Computer
	store    *Store
	memory   *LRU[Key, memoryEntry]
	logger   *slog.Logger
	recorder LookupRecorder
}

// CachedOption customizes a Cached.
type CachedOption func(*Cached)

// WithMemoryEntries sets how many documents stay in memory.
func WithMemoryEntries(n int) CachedOption {
	return func(c *Cached) { c.memory = NewLRU[Key, memoryEntry](n) }
}

// WithCacheLogger sets the logger.
func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) { c.logger = logger }
}

// WithLookupRecorder sets the recorder notified of lookup outcomes.
func WithLookupRecorder(recorder LookupRecorder) CachedOption {
	return func(c *Cached) { c.recorder = recorder }
}

// NewCached creates a Cached.
func NewCached(computer Computer, store *Store, opts ...CachedOption) *Cached {
	c := &Cached{
		computer: computer,
		store:    store,
		memory:   NewLRU[Key, memoryEntry](DefaultLRUEntries),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup returns the cached document for key, from memory or disk. It
// returns ErrNotCached when none exists.
func (c *Cached) Lookup(ctx context.Context, key Key) (*gitmetrics.GitMetrics, error) {
	info, statErr := c.store.Stat(key)
	if statErr != nil {
		if errors.Is(statErr, ErrNotCached) {
			c.memory.Remove(key)
			c.record(ctx, LookupMiss)
		}

		return nil, statErr
	}

	if entry, ok := c.memory.Get(key); ok && entry.matches(info) {
		c.record(ctx, LookupMemory)

		return entry.doc, nil
	}

	doc, err := c.store.Load(key)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotCached):
			c.record(ctx, LookupMiss)
		case errors.Is(err, ErrInvalidDocument):
			c.record(ctx, LookupInvalid)
		}

		return nil, err
	}

	c.record(ctx, LookupDisk)
	c.memory.Put(key, memoryEntry{doc: doc, info: info})

	return doc, nil
}

// Compute returns the cached document for key unless refresh is set or none
// exists, in which case it recomputes every repository and replaces the
// stored document. A document that fails validation is recomputed.
func (c *Cached) Compute(
	ctx context.Context, key Key, block gitmetrics.Block, repos []gitmetrics.Repository, refresh bool,
) (*gitmetrics.GitMetrics, error) {
	if refresh {
		c.record(ctx, LookupRefresh)
	} else {
		doc, err := c.Lookup(ctx, key)

		switch {
		case err == nil:
			return doc, nil
		case errors.Is(err, ErrInvalidDocument):
			c.logger.WarnContext(ctx, "discarding invalid cached metrics", "key", key.String(), "error", err)
		case !errors.Is(err, ErrNotCached):
			return nil, err
		}
	}

	doc, err := c.computer.ComputeMetrics(ctx, block, repos)
	if err != nil {
		return nil, err
	}

	saveErr := c.store.Save(key, doc)
	if saveErr != nil {
		return nil, saveErr
	}

	c.remember(key, doc)
	c.logger.InfoContext(ctx, "metrics cached",
		"key", key.String(), "path", c.store.Path(key), "repositories", len(doc.Repositories))

	return doc, nil
}

// remember keeps a just-saved document in memory. When the file cannot be
// described the entry is dropped and the next lookup reads disk.
func (c *Cached) remember(key Key, doc *gitmetrics.GitMetrics) {
	info, err := c.store.Stat(key)
	if err != nil {
		c.memory.Remove(key)

		return
	}

	c.memory.Put(key, memoryEntry{doc: doc, info: info})
}

func (c *Cached) record(ctx context.Context, result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(ctx, result)
	}
}
