package gitmetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Days(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"one hour clamps to one day", start.Add(time.Hour), 1},
		{"empty window clamps to one day", start, 1},
		{"exact week", start.AddDate(0, 0, 7), 7},
		{"partial day rounds up", start.Add(49 * time.Hour), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Window{Start: start, End: tt.end}.Days())
		})
	}
}

func TestAvgCommitsPerDay(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	week := Window{Start: start, End: start.AddDate(0, 0, 7)}
	assert.InDelta(t, 2.0, AvgCommitsPerDay(14, week), 1e-9)

	subDay := Window{Start: start, End: start.Add(30 * time.Minute)}
	assert.Zero(t, AvgCommitsPerDay(0, subDay))
	assert.InDelta(t, 3.0, AvgCommitsPerDay(3, subDay), 1e-9)
}

func TestWindow_Contains(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.AddDate(0, 0, 1)}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(time.Hour)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(start.Add(-time.Second)))
}

func TestBlock_Window(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)
	now := start.AddDate(0, 0, 3)

	closed := Block{ID: "b1", StartDate: start, EndDate: &end}
	assert.Equal(t, Window{Start: start, End: end}, closed.Window(now))

	open := Block{ID: "b2", StartDate: start, ExpectedDuration: 14 * 24 * time.Hour}
	assert.Equal(t, Window{Start: start, End: now}, open.Window(now))
}

func TestFailureReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not a git repository", FailureReason(ErrNotARepository))
	assert.Contains(t, FailureReason(ErrRemoteAuth), "authentication")
	assert.Contains(t, FailureReason(ErrRemoteNotFound), "not found")
	assert.Equal(t, "boom", FailureReason(errors.New("boom")))
}
