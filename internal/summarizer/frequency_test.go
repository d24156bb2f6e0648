package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_PicksFrequentSentencesInOrder(t *testing.T) {
	text := "Gophers dig tunnels. The weather was mild. Gophers store food in tunnels! Nobody asked."
	s := NewFrequencySummarizer()

	got, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Gophers dig tunnels. Gophers store food in tunnels!", got)
}

func TestSummarize_NoPunctuation(t *testing.T) {
	got, err := NewFrequencySummarizer().Summarize("  just   some words\n", 3)
	require.NoError(t, err)
	assert.Equal(t, "just some words", got)
}

func TestSummarize_FewerSentencesThanRequested(t *testing.T) {
	got, err := NewFrequencySummarizer().Summarize("Only one.", 0)
	require.NoError(t, err)
	assert.Equal(t, "Only one.", got)
}

func TestSummarize_Empty(t *testing.T) {
	got, err := NewFrequencySummarizer().Summarize("", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}
