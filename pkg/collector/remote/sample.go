package remote

import (
	"math"

	"github.com/google/go-github/v61/github"

	"github.com/Sumatoshi-tech/tryflow/pkg/fileclass"
	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// SampleIndices picks which of n commits get a detail request. With n <= k
// every index is returned; otherwise k evenly spaced indices floor(i*n/k).
func SampleIndices(n, k int) []int {
	count := min(n, k)
	if count <= 0 {
		return nil
	}

	indices := make([]int, count)
	for i := range indices {
		indices[i] = i * n / count
	}

	return indices
}

// Extrapolate scales a sampled sum to the full population, rounded to the
// nearest integer.
func Extrapolate(sampledSum, total, sampled int) int {
	if sampled <= 0 || sampled >= total {
		return sampledSum
	}

	return int(math.Round(float64(sampledSum) * float64(total) / float64(sampled)))
}

// detailSum accumulates per-commit detail responses.
type detailSum struct {
	added   int
	removed int
	files   fileclass.Tally
}

func (d *detailSum) add(rc *github.RepositoryCommit) {
	d.added += rc.GetStats().GetAdditions()
	d.removed += rc.GetStats().GetDeletions()

	for _, f := range rc.Files {
		d.files.Add(f.GetFilename())
	}
}

// applyTo fills line and file counts on rm, scaling them when only sampled
// of total commits were inspected.
func (d *detailSum) applyTo(rm *gitmetrics.RepoMetrics, total, sampled int) {
	rm.LinesAdded = Extrapolate(d.added, total, sampled)
	rm.LinesRemoved = Extrapolate(d.removed, total, sampled)
	rm.FilesChanged = Extrapolate(d.files.Files(), total, sampled)
	rm.TestFilesChanged = Extrapolate(d.files.TestFiles(), total, sampled)
	rm.DocFilesChanged = Extrapolate(d.files.DocFiles(), total, sampled)

	if langs := d.files.Languages(); langs != nil {
		rm.Languages = make(map[string]int, len(langs))
		for lang, n := range langs {
			rm.Languages[lang] = Extrapolate(n, total, sampled)
		}
	}

	if sampled < total {
		rm.Estimated = true
		rm.SampledCommits = sampled
	}
}
