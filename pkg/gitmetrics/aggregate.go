package gitmetrics

import (
	"sort"
	"time"
)

// dayKeyLayout formats the UTC calendar day used to deduplicate commit times.
const dayKeyLayout = time.DateOnly

// Aggregate combines per-repository metrics into totals.
//
// Counters and language counts are summed. AvgCommitsPerDay is the mean of the
// repositories' own averages, so one busy repository does not dominate a
// comparison between blocks. FirstCommitTimes is the union of all lists,
// reduced to the earliest time per UTC day and sorted ascending. An empty map
// yields zeros and an empty, non-nil FirstCommitTimes.
func Aggregate(repos map[string]RepoMetrics) RepoMetrics {
	totals := RepoMetrics{FirstCommitTimes: []time.Time{}}

	if len(repos) == 0 {
		return totals
	}

	var (
		avgSum   float64
		allTimes []time.Time
	)

	for _, rm := range repos {
		totals.Commits += rm.Commits
		totals.LinesAdded += rm.LinesAdded
		totals.LinesRemoved += rm.LinesRemoved
		totals.FilesChanged += rm.FilesChanged
		totals.TestFilesChanged += rm.TestFilesChanged
		totals.DocFilesChanged += rm.DocFilesChanged
		totals.SampledCommits += rm.SampledCommits
		totals.Estimated = totals.Estimated || rm.Estimated

		for lang, n := range rm.Languages {
			if totals.Languages == nil {
				totals.Languages = make(map[string]int)
			}

			totals.Languages[lang] += n
		}

		avgSum += rm.AvgCommitsPerDay
		allTimes = append(allTimes, rm.FirstCommitTimes...)
	}

	totals.AvgCommitsPerDay = avgSum / float64(len(repos))
	totals.FirstCommitTimes = FirstCommitPerDay(allTimes)

	return totals
}

// FirstCommitPerDay keeps the earliest timestamp of each UTC calendar day in
// times and returns them sorted ascending. The result is never nil.
func FirstCommitPerDay(times []time.Time) []time.Time {
	earliest := make(map[string]time.Time, len(times))

	for _, ts := range times {
		key := ts.UTC().Format(dayKeyLayout)

		current, ok := earliest[key]
		if !ok || ts.Before(current) {
			earliest[key] = ts
		}
	}

	out := make([]time.Time, 0, len(earliest))
	for _, ts := range earliest {
		out = append(out, ts)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	return out
}
