// Package chunker splits document text into overlapping retrieval windows.
package chunker

import "docrag/internal/domain"

// Strategy selects the unit a chunker windows over.
type Strategy string

const (
	StrategyWord     Strategy = "word"
	StrategySentence Strategy = "sentence"
)

// New returns the chunker for strategy. An empty strategy means words.
func New(strategy Strategy, size, overlap int) (domain.Chunker, error) {
	switch strategy {
	case StrategyWord, "":
		return NewWordChunker(size, overlap)
	case StrategySentence:
		return NewSentenceChunker(size, overlap)
	default:
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown chunking strategy %q", strategy)
	}
}
