package domain

import "context"

// Chunk is a contiguous window of a document used as a retrieval unit.
type Chunk struct {
	Index int
	Text  string
}

// Neighbor is one nearest-neighbor hit: the stored position and its squared
// L2 distance to the query.
type Neighbor struct {
	Position int
	Distance float64
}

// IngestResult describes a successfully published document generation.
type IngestResult struct {
	ChunkCount   int
	Dimension    int
	GenerationID string
	Summary      string
}

// RetrievalResult is the ranked context for one question, nearest chunk first.
type RetrievalResult struct {
	Context      string
	UsedChunks   []Chunk
	Distances    []float64
	GenerationID string
}

// Answer is a generated reply together with the context it was grounded on.
type Answer struct {
	Text         string
	Context      string
	UsedChunks   []Chunk
	GenerationID string
}

// Embedder converts texts into vectors. The returned slice has one vector per
// input text, in input order, all of the same length.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits document text into ordered chunks.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
