package vectorindex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"docrag/internal/domain"
)

func TestBuild_DimensionMismatch(t *testing.T) {
	_, err := Build([][]float32{{1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = Build([][]float32{{}, {}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestBuild_CopiesInput(t *testing.T) {
	in := [][]float32{{0, 0}, {5, 5}}
	idx, err := Build(in)
	require.NoError(t, err)
	in[0][0] = 100

	hits, err := idx.Search([]float32{0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, hits[0].Position)
	assert.Equal(t, 0.0, hits[0].Distance)
	assert.Equal(t, 2, idx.Size())
	assert.Equal(t, 2, idx.Dimension())
}

func TestSearch_OrderAndDistances(t *testing.T) {
	idx, err := Build([][]float32{
		{10, 0},
		{1, 0},
		{3, 4},
		{0, 2},
	})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Neighbor{
		{Position: 1, Distance: 1},
		{Position: 3, Distance: 4},
		{Position: 2, Distance: 25},
	}, hits)
}

func TestSearch_TiesByPosition(t *testing.T) {
	idx, err := Build([][]float32{{1}, {-1}, {1}, {-1}})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0}, 4)
	require.NoError(t, err)
	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.Position
	}
	assert.Equal(t, []int{0, 1, 2, 3}, positions)
}

func TestSearch_NaNSortsLast(t *testing.T) {
	nan := float32(math.NaN())
	idx, err := Build([][]float32{{nan}, {2}, {1}})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, hits[0].Position)
	assert.Equal(t, 1, hits[1].Position)
	assert.Equal(t, 0, hits[2].Position)
}

func TestSearch_ClampsK(t *testing.T) {
	idx, err := Build([][]float32{{1, 1}, {2, 2}})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_Empty(t *testing.T) {
	idx, err := Build(nil)
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 0, idx.Size())

	var nilIdx *Index
	hits, err = nilIdx.Search([]float32{1}, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_InvalidArguments(t *testing.T) {
	idx, err := Build([][]float32{{1, 1}})
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = idx.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearch_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dim := rapid.IntRange(1, 8).Draw(rt, "dim")
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		k := rapid.IntRange(1, 50).Draw(rt, "k")
		coord := rapid.Float64Range(-100, 100)

		vectors := make([][]float32, n)
		for i := range vectors {
			vectors[i] = make([]float32, dim)
			for j := range vectors[i] {
				vectors[i][j] = float32(coord.Draw(rt, "coord"))
			}
		}
		query := make([]float32, dim)
		for j := range query {
			query[j] = float32(coord.Draw(rt, "query"))
		}

		idx, err := Build(vectors)
		require.NoError(rt, err)
		hits, err := idx.Search(query, k)
		require.NoError(rt, err)

		assert.Len(rt, hits, min(k, n))
		seen := make(map[int]bool, len(hits))
		for i, h := range hits {
			require.GreaterOrEqual(rt, h.Position, 0)
			require.Less(rt, h.Position, n)
			assert.False(rt, seen[h.Position], "duplicate position %d", h.Position)
			seen[h.Position] = true
			assert.Equal(rt, squaredL2(query, vectors[h.Position]), h.Distance)
			if i > 0 {
				prev := hits[i-1]
				assert.LessOrEqual(rt, prev.Distance, h.Distance)
				if prev.Distance == h.Distance {
					assert.Less(rt, prev.Position, h.Position)
				}
			}
		}
		// nothing left out is strictly closer than the last hit
		if len(hits) > 0 {
			worst := hits[len(hits)-1].Distance
			for i := range vectors {
				if !seen[i] {
					assert.GreaterOrEqual(rt, squaredL2(query, vectors[i]), worst)
				}
			}
		}
	})
}
