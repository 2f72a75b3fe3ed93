package gitlib_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitlib"
)

func TestParseHash_SHA1(t *testing.T) {
	t.Parallel()

	const hex = "0123456789abcdef0123456789abcdef01234567"

	hash, err := gitlib.ParseHash(hex)
	require.NoError(t, err)

	assert.Equal(t, hex, hash.String())
	assert.False(t, hash.IsZero())
}

func TestParseHash_SHA256KeepsFullName(t *testing.T) {
	t.Parallel()

	prefix := strings.Repeat("ab", 20)
	first, err := gitlib.ParseHash(prefix + strings.Repeat("1", 24))
	require.NoError(t, err)

	second, err := gitlib.ParseHash(prefix + strings.Repeat("2", 24))
	require.NoError(t, err)

	assert.Len(t, first.String(), gitlib.SHA256HexSize)
	assert.NotEqual(t, first, second)
}

func TestParseHash_Normalizes(t *testing.T) {
	t.Parallel()

	upper, err := gitlib.ParseHash(" " + strings.Repeat("ABCDEF0123", 4) + "\n")
	require.NoError(t, err)

	assert.Equal(t, gitlib.NewHash(strings.Repeat("abcdef0123", 4)), upper)
}

func TestParseHash_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "abc", strings.Repeat("z", gitlib.SHA1HexSize), strings.Repeat("a", 50)} {
		_, err := gitlib.ParseHash(raw)
		assert.ErrorIs(t, err, gitlib.ErrInvalidHash, raw)
	}
}

func TestHash_IsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, gitlib.Hash("").IsZero())
	assert.True(t, gitlib.NewHash(strings.Repeat("0", gitlib.SHA1HexSize)).IsZero())
	assert.False(t, gitlib.NewHash("01").IsZero())
}
