package chunker

import (
	"regexp"
	"strings"

	"docrag/internal/domain"
)

// SentenceChunker splits text into sentence-based chunks with overlap.
// Unlike WordChunker it stops as soon as a window reaches the last sentence.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) (*SentenceChunker, error) {
	if err := validateWindow(sentencesPerChunk, overlapSentences); err != nil {
		return nil, err
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}, nil
}

func (c *SentenceChunker) Chunk(text string) ([]domain.Chunk, error) {
	sentences := c.sentences(text)
	if len(sentences) == 0 {
		return []domain.Chunk{}, nil
	}
	var chunks []domain.Chunk
	i := 0
	for i < len(sentences) {
		end := min(i+c.sentencesPerChunk, len(sentences))
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  strings.Join(sentences[i:end], " "),
		})
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks, nil
}

func (c *SentenceChunker) sentences(text string) []string {
	raw := c.splitter.FindAllString(text, -1)
	// trailing text without terminal punctuation is still a sentence
	consumed := 0
	for _, s := range raw {
		consumed = strings.Index(text[consumed:], s) + consumed + len(s)
	}
	if tail := strings.TrimSpace(text[consumed:]); tail != "" {
		raw = append(raw, tail)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
