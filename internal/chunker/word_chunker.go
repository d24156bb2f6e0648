package chunker

import (
	"strings"

	"docrag/internal/domain"
)

// WordChunker splits text into fixed-size word windows that overlap by a
// fixed number of words.
type WordChunker struct {
	size    int
	overlap int
}

// NewWordChunker validates the window parameters and returns a chunker.
func NewWordChunker(size, overlap int) (*WordChunker, error) {
	if err := validateWindow(size, overlap); err != nil {
		return nil, err
	}
	return &WordChunker{size: size, overlap: overlap}, nil
}

// Chunk implements domain.Chunker.
func (c *WordChunker) Chunk(text string) ([]domain.Chunk, error) {
	return Words(text, c.size, c.overlap)
}

// Words tokenizes text on whitespace runs and emits a window of up to size
// words at every multiple of size-overlap. Every window that fits is full;
// windows starting within size words of the end are short, so when overlap
// exceeds the step several short windows trail the last full one.
func Words(text string, size, overlap int) ([]domain.Chunk, error) {
	if err := validateWindow(size, overlap); err != nil {
		return nil, err
	}
	return windows(strings.Fields(text), size, overlap, " "), nil
}

func windows(units []string, size, overlap int, sep string) []domain.Chunk {
	if len(units) == 0 {
		return []domain.Chunk{}
	}
	step := size - overlap
	chunks := make([]domain.Chunk, 0, (len(units)+step-1)/step)
	for start := 0; start < len(units); start += step {
		end := min(start+size, len(units))
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  strings.Join(units[start:end], sep),
		})
	}
	return chunks
}

func validateWindow(size, overlap int) error {
	switch {
	case size < 1:
		return domain.Errorf(domain.CodeInvalidConfiguration, "chunk size must be >= 1, got %d", size)
	case overlap < 0:
		return domain.Errorf(domain.CodeInvalidConfiguration, "overlap must be >= 0, got %d", overlap)
	case overlap >= size:
		return domain.Errorf(domain.CodeInvalidConfiguration, "overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return nil
}
