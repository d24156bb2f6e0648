package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
	"docrag/internal/vectorindex"
)

func generation(t *testing.T, prefix string, n int) ([]domain.Chunk, *vectorindex.Index) {
	t.Helper()
	chunks := make([]domain.Chunk, n)
	vectors := make([][]float32, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{Index: i, Text: fmt.Sprintf("%s-%d", prefix, i)}
		vectors[i] = []float32{float32(i), 0}
	}
	idx, err := vectorindex.Build(vectors)
	require.NoError(t, err)
	return chunks, idx
}

func TestStore_EmptyAtStart(t *testing.T) {
	s := New()
	assert.False(t, s.Ready())
	gen, ok := s.Snapshot()
	assert.False(t, ok)
	assert.Nil(t, gen)
}

func TestStore_Replace(t *testing.T) {
	s := New()
	chunks, idx := generation(t, "a", 3)

	first, err := s.Replace(chunks, idx, "summary a")
	require.NoError(t, err)
	assert.True(t, s.Ready())
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "summary a", first.Summary)

	chunks, idx = generation(t, "b", 2)
	second, err := s.Replace(chunks, idx, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, ok := s.Snapshot()
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Len(t, got.Chunks, 2)
}

func TestStore_ReplaceRejectsMismatch(t *testing.T) {
	s := New()
	chunks, idx := generation(t, "a", 3)

	_, err := s.Replace(chunks[:2], idx, "")
	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
	_, err = s.Replace(chunks, nil, "")
	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
	assert.False(t, s.Ready())
}

func TestStore_ReplaceCopiesChunks(t *testing.T) {
	s := New()
	chunks, idx := generation(t, "a", 2)
	_, err := s.Replace(chunks, idx, "")
	require.NoError(t, err)

	chunks[0].Text = "mutated"
	gen, _ := s.Snapshot()
	assert.Equal(t, "a-0", gen.Chunks[0].Text)
}

func TestStore_ConcurrentSnapshotsNeverTorn(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= 50; i++ {
				chunks, idx := generation(t, fmt.Sprintf("w%d", w), i)
				_, err := s.Replace(chunks, idx, "")
				assert.NoError(t, err)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				gen, ok := s.Snapshot()
				if !ok {
					continue
				}
				assert.Equal(t, len(gen.Chunks), gen.Index.Size())
			}
		}()
	}
	wg.Wait()
	assert.True(t, s.Ready())
}
