package gitmetrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return ts
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	totals := Aggregate(map[string]RepoMetrics{})

	assert.Zero(t, totals.Commits)
	assert.Zero(t, totals.LinesAdded)
	assert.Zero(t, totals.LinesRemoved)
	assert.Zero(t, totals.FilesChanged)
	assert.Zero(t, totals.TestFilesChanged)
	assert.Zero(t, totals.DocFilesChanged)
	assert.Zero(t, totals.AvgCommitsPerDay)
	require.NotNil(t, totals.FirstCommitTimes)
	assert.Empty(t, totals.FirstCommitTimes)
	assert.False(t, totals.Estimated)
}

func TestAggregate_Nil(t *testing.T) {
	t.Parallel()

	totals := Aggregate(nil)

	require.NotNil(t, totals.FirstCommitTimes)
	assert.Empty(t, totals.FirstCommitTimes)
}

func TestAggregate_SumsCounters(t *testing.T) {
	t.Parallel()

	repos := map[string]RepoMetrics{
		"a": {Commits: 3, LinesAdded: 10, LinesRemoved: 2, FilesChanged: 4, TestFilesChanged: 1, DocFilesChanged: 1},
		"b": {Commits: 5, LinesAdded: 7, LinesRemoved: 9, FilesChanged: 2, TestFilesChanged: 0, DocFilesChanged: 2},
		"c": {Commits: 1, LinesAdded: 1, LinesRemoved: 1, FilesChanged: 1, TestFilesChanged: 1, DocFilesChanged: 0},
	}

	totals := Aggregate(repos)

	assert.Equal(t, 9, totals.Commits)
	assert.Equal(t, 18, totals.LinesAdded)
	assert.Equal(t, 12, totals.LinesRemoved)
	assert.Equal(t, 7, totals.FilesChanged)
	assert.Equal(t, 2, totals.TestFilesChanged)
	assert.Equal(t, 3, totals.DocFilesChanged)
}

func TestAggregate_AvgIsMeanNotSum(t *testing.T) {
	t.Parallel()

	repos := map[string]RepoMetrics{
		"busy":  {Commits: 40, AvgCommitsPerDay: 4},
		"quiet": {Commits: 10, AvgCommitsPerDay: 1},
	}

	totals := Aggregate(repos)

	assert.InDelta(t, 2.5, totals.AvgCommitsPerDay, 1e-9)
	assert.NotEqual(t, 5.0, totals.AvgCommitsPerDay)
}

func TestAggregate_SameDayKeepsEarliest(t *testing.T) {
	t.Parallel()

	early := mustTime(t, "2024-03-01T08:15:00Z")
	late := mustTime(t, "2024-03-01T13:40:00Z")
	nextDay := mustTime(t, "2024-03-02T09:00:00Z")

	repos := map[string]RepoMetrics{
		"a": {FirstCommitTimes: []time.Time{late, nextDay}},
		"b": {FirstCommitTimes: []time.Time{early}},
	}

	totals := Aggregate(repos)

	assert.Equal(t, []time.Time{early, nextDay}, totals.FirstCommitTimes)
}

func TestAggregate_FirstCommitTimesSorted(t *testing.T) {
	t.Parallel()

	repos := map[string]RepoMetrics{
		"a": {FirstCommitTimes: []time.Time{mustTime(t, "2024-03-05T10:00:00Z"), mustTime(t, "2024-03-01T10:00:00Z")}},
		"b": {FirstCommitTimes: []time.Time{mustTime(t, "2024-03-03T10:00:00Z")}},
		"c": {FirstCommitTimes: []time.Time{mustTime(t, "2024-03-02T10:00:00Z"), mustTime(t, "2024-03-04T10:00:00Z")}},
	}

	times := Aggregate(repos).FirstCommitTimes

	require.Len(t, times, 5)

	for i := 1; i < len(times); i++ {
		assert.False(t, times[i].Before(times[i-1]), "index %d out of order", i)
	}
}

func TestAggregate_LanguagesAndEstimate(t *testing.T) {
	t.Parallel()

	repos := map[string]RepoMetrics{
		"a": {Languages: map[string]int{"Go": 2, "Markdown": 1}},
		"b": {Languages: map[string]int{"Go": 3}, Estimated: true, SampledCommits: 20},
	}

	totals := Aggregate(repos)

	assert.Equal(t, map[string]int{"Go": 5, "Markdown": 1}, totals.Languages)
	assert.True(t, totals.Estimated)
	assert.Equal(t, 20, totals.SampledCommits)
}

func TestFirstCommitPerDay_UsesUTCDay(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("UTC-5", -5*60*60)
	// 2024-03-01T22:00-05:00 is 2024-03-02T03:00Z, the same UTC day as the second timestamp.
	evening := time.Date(2024, 3, 1, 22, 0, 0, 0, zone)
	morning := mustTime(t, "2024-03-02T09:00:00Z")

	got := FirstCommitPerDay([]time.Time{morning, evening})

	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(evening))
}

func TestFirstCommitPerDay_Empty(t *testing.T) {
	t.Parallel()

	got := FirstCommitPerDay(nil)

	require.NotNil(t, got)
	assert.Empty(t, got)
}
