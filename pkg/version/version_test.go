package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Not parallel: mutates package-level build metadata.
func TestApplyBuildInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date

	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})

	Version, Commit, Date = "dev", unknown, unknown

	applyBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: vcsRevisionKey, Value: "0123456789abcdef0123"},
			{Key: vcsTimeKey, Value: "2024-03-01T10:00:00Z"},
		},
	})

	assert.Equal(t, "v0.3.1", Version)
	assert.Equal(t, "0123456789ab", Commit)
	assert.Equal(t, "2024-03-01T10:00:00Z", Date)
}

func TestApplyBuildInfo_KeepsLinkerValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date

	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})

	Version, Commit, Date = "v1.0.0", "abc", "today"

	applyBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: vcsRevisionKey, Value: "fff"},
		},
	})

	assert.Equal(t, "v1.0.0", Version)
	assert.Equal(t, "abc", Commit)
	assert.Equal(t, "today", Date)
}
