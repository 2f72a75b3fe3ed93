// Package gitmetrics defines the per-block coding activity document, the
// aggregation rules that combine repositories into totals, and the engine that
// drives collection across configured repositories.
package gitmetrics

import (
	"math"
	"time"
)

// hoursPerDay converts window durations to days.
const hoursPerDay = 24

// Repository is one configured repository entry. Path is a local path, a
// github.com URL or "owner/repo" shorthand.
type Repository struct {
	Path   string `json:"path"             mapstructure:"path"   yaml:"path"`
	Branch string `json:"branch,omitempty" mapstructure:"branch" yaml:"branch,omitempty"`
}

// Block is a time-bounded period under one experimental condition.
type Block struct {
	ID               string
	StartDate        time.Time
	EndDate          *time.Time
	ExpectedDuration time.Duration
}

// Window returns the block's [start, end) interval. An open block ends at now.
func (b Block) Window(now time.Time) Window {
	end := now
	if b.EndDate != nil {
		end = *b.EndDate
	}

	return Window{Start: b.StartDate, End: end}
}

// Window is a half-open [Start, End) interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the window length in whole days, rounded up and never less
// than one.
func (w Window) Days() int {
	days := int(math.Ceil(w.End.Sub(w.Start).Hours() / hoursPerDay))

	return max(1, days)
}

// RepoMetrics is the commit, line and file activity of one repository, or
// the totals across several.
type RepoMetrics struct {
	Commits          int            `json:"commits"             yaml:"commits"`
	LinesAdded       int            `json:"linesAdded"          yaml:"linesAdded"`
	LinesRemoved     int            `json:"linesRemoved"        yaml:"linesRemoved"`
	FilesChanged     int            `json:"filesChanged"        yaml:"filesChanged"`
	TestFilesChanged int            `json:"testFilesChanged"    yaml:"testFilesChanged"`
	DocFilesChanged  int            `json:"docFilesChanged"     yaml:"docFilesChanged"`
	AvgCommitsPerDay float64        `json:"avgCommitsPerDay"    yaml:"avgCommitsPerDay"`
	FirstCommitTimes []time.Time    `json:"firstCommitTimes"    yaml:"firstCommitTimes"`
	Languages        map[string]int `json:"languages,omitempty" yaml:"languages,omitempty"`

	// Estimated is set when line and file counts were extrapolated from a
	// sample of commits rather than counted exactly.
	Estimated bool `json:"estimated,omitempty" yaml:"estimated,omitempty"`

	// SampledCommits is the number of commits whose detail was fetched when
	// Estimated is set.
	SampledCommits int `json:"sampledCommits,omitempty" yaml:"sampledCommits,omitempty"`
}

// DateRange is the serialized form of a Window.
type DateRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end"   yaml:"end"`
}

// GitMetrics is the cached per-block document.
type GitMetrics struct {
	BlockID      string                 `json:"blockId"      yaml:"blockId"`
	ComputedAt   time.Time              `json:"computedAt"   yaml:"computedAt"`
	DateRange    DateRange              `json:"dateRange"    yaml:"dateRange"`
	Repositories map[string]RepoMetrics `json:"repositories" yaml:"repositories"`
	Totals       RepoMetrics            `json:"totals"       yaml:"totals"`
}

// AvgCommitsPerDay divides commits by the window length in days, clamped to
// at least one day.
func AvgCommitsPerDay(commits int, w Window) float64 {
	return float64(commits) / float64(w.Days())
}
