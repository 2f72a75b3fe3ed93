package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleIndices(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SampleIndices(0, 20))
	assert.Equal(t, []int{0, 1, 2}, SampleIndices(3, 20))
	assert.Equal(t, []int{0, 2, 5, 7}, SampleIndices(10, 4))

	indices := SampleIndices(25, 20)
	assert.Len(t, indices, 20)

	seen := make(map[int]bool, len(indices))
	for i, idx := range indices {
		assert.False(t, seen[idx], "duplicate index %d", idx)
		assert.Less(t, idx, 25)

		if i > 0 {
			assert.Greater(t, idx, indices[i-1])
		}

		seen[idx] = true
	}
}

func TestSampleIndices_Large(t *testing.T) {
	t.Parallel()

	indices := SampleIndices(5000, 20)

	assert.Len(t, indices, 20)
	assert.Equal(t, 0, indices[0])
	assert.Equal(t, 4750, indices[19])
}

func TestExtrapolate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 250, Extrapolate(200, 25, 20))
	assert.Equal(t, 13, Extrapolate(10, 25, 20))
	assert.Equal(t, 7, Extrapolate(7, 7, 7))
	assert.Equal(t, 0, Extrapolate(0, 0, 0))
}
