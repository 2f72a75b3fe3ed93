package gitlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testHashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestParseNumStat(t *testing.T) {
	t.Parallel()

	out := "commit " + testHashA + "\n" +
		"\n" +
		"10\t2\tsrc/main.go\n" +
		"-\t-\tassets/logo.png\n" +
		"commit " + testHashB + "\n" +
		"\n" +
		"3\t0\tdocs/{old.md => new.md}\n" +
		"1\t1\tREADME => README.md\n"

	stats, err := ParseNumStat([]byte(out))
	require.NoError(t, err)

	assert.Equal(t, []FileStat{
		{Hash: NewHash(testHashA), Path: "src/main.go", Added: 10, Removed: 2},
		{Hash: NewHash(testHashA), Path: "assets/logo.png"},
		{Hash: NewHash(testHashB), Path: "docs/new.md", Added: 3},
		{Hash: NewHash(testHashB), Path: "README.md", Added: 1, Removed: 1},
	}, stats)
}

func TestParseNumStat_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseNumStat([]byte("commit " + testHashA + "\nx\ty\tfile.go\n"))
	require.ErrorIs(t, err, ErrMalformedLog)

	_, err = ParseNumStat([]byte("commit deadbeef\n1\t1\tfile.go\n"))
	require.ErrorIs(t, err, ErrMalformedLog)
	require.ErrorIs(t, err, ErrInvalidHash)

	_, err = ParseNumStat([]byte("just one field\n"))
	require.ErrorIs(t, err, ErrMalformedLog)
}

func TestRenameTarget(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain/path.go":         "plain/path.go",
		"old.go => new.go":      "new.go",
		"pkg/{a => b}/file.go":  "pkg/b/file.go",
		"pkg/{ => sub}/file.go": "pkg/sub/file.go",
		"pkg/{sub => }/file.go": "pkg/file.go",
		"{lib => src}/index.js": "src/index.js",
		"weird{brace}name.txt":  "weird{brace}name.txt",
	}

	for in, want := range tests {
		assert.Equal(t, want, RenameTarget(in), in)
	}
}

func TestHash_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHash(testHashA)

	assert.Equal(t, testHashA, h.String())
	assert.False(t, h.IsZero())
	assert.True(t, Hash("").IsZero())
}
