package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"docrag/internal/domain"
)

func texts(chunks []domain.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestWords_Example(t *testing.T) {
	chunks, err := Words("a b c d e", 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b c", "c d e", "e"}, texts(chunks))
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestWords_WhitespaceRuns(t *testing.T) {
	chunks, err := Words("  one\ttwo\n\nthree   four ", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"one two", "three four"}, texts(chunks))
}

func TestWords_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		chunks, err := Words(in, 500, 50)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestWords_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative overlap", 3, -1},
		{"overlap equals size", 3, 3},
		{"overlap exceeds size", 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Words("a b c", tt.size, tt.overlap)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestWords_DefaultWindow(t *testing.T) {
	words := make([]string, 1000)
	for i := range words {
		words[i] = "w"
	}
	chunks, err := Words(strings.Join(words, " "), 500, 50)
	require.NoError(t, err)
	// starts at 0, 450, 900
	require.Len(t, chunks, 3)
	assert.Len(t, strings.Fields(chunks[0].Text), 500)
	assert.Len(t, strings.Fields(chunks[1].Text), 500)
	assert.Len(t, strings.Fields(chunks[2].Text), 100)
}

func TestWordChunker_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(rt, "words")
		size := rapid.IntRange(1, 30).Draw(rt, "size")
		overlap := rapid.IntRange(0, size-1).Draw(rt, "overlap")

		words := make([]string, n)
		for i := range words {
			words[i] = rapid.StringMatching(`[a-z]{1,6}`).Draw(rt, "word")
		}
		text := strings.Join(words, " ")

		first, err := Words(text, size, overlap)
		require.NoError(rt, err)
		second, err := Words(text, size, overlap)
		require.NoError(rt, err)
		assert.Equal(rt, first, second, "deterministic")

		step := size - overlap
		covered := make([]bool, n)
		shortSeen := false
		for i, c := range first {
			span := strings.Fields(c.Text)
			start := i * step
			assert.Equal(rt, words[start:start+len(span)], span)
			for j := range span {
				covered[start+j] = true
			}
			if len(span) == size {
				assert.False(rt, shortSeen, "full window %d after a short one", i)
			} else {
				shortSeen = true
			}
			if start+size <= n {
				assert.Len(rt, span, size, "window %d fits and must be full", i)
			} else {
				assert.Len(rt, span, n-start, "window %d runs to the end", i)
			}
			if i > 0 && overlap > 0 {
				prev := strings.Fields(first[i-1].Text)
				if len(prev) == size && len(span) == size {
					assert.Equal(rt, prev[size-overlap:], span[:overlap])
				}
			}
		}
		for i, ok := range covered {
			assert.True(rt, ok, "word %d not covered", i)
		}
	})
}

func TestWords_ShortTrailingWindows(t *testing.T) {
	// overlap larger than the step leaves several short windows at the end
	chunks, err := Words("a b c d e f", 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b c d", "b c d e", "c d e f", "d e f", "e f", "f"}, texts(chunks))
}

func TestSentenceChunker(t *testing.T) {
	c, err := NewSentenceChunker(2, 1)
	require.NoError(t, err)

	chunks, err := c.Chunk("One. Two!  Three? Four")
	require.NoError(t, err)
	assert.Equal(t, []string{"One. Two!", "Two! Three?", "Three? Four"}, texts(chunks))
	assert.Equal(t, 2, chunks[2].Index)
}

func TestSentenceChunker_Empty(t *testing.T) {
	c, err := NewSentenceChunker(5, 1)
	require.NoError(t, err)
	chunks, err := c.Chunk("   ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNew(t *testing.T) {
	c, err := New("", 3, 1)
	require.NoError(t, err)
	assert.IsType(t, &WordChunker{}, c)

	c, err = New(StrategySentence, 3, 1)
	require.NoError(t, err)
	assert.IsType(t, &SentenceChunker{}, c)

	_, err = New("paragraph", 3, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = New(StrategySentence, 2, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
