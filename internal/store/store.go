// Package store holds the active document generation shared by concurrent
// ingest and query calls.
package store

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"docrag/internal/domain"
	"docrag/internal/vectorindex"
)

// Generation is one ingested document: its chunks and the index built from
// their embeddings. It is never mutated after publication.
type Generation struct {
	ID        string
	Chunks    []domain.Chunk
	Index     *vectorindex.Index
	Summary   string
	CreatedAt time.Time
}

// Store publishes generations through a single atomic pointer so readers
// always see chunks and index from the same generation. Concurrent Replace
// calls race and the last one to publish wins; nothing is merged.
type Store struct {
	current atomic.Pointer[Generation]
}

func New() *Store { return &Store{} }

// Replace publishes a new generation built from chunks and index.
func (s *Store) Replace(chunks []domain.Chunk, index *vectorindex.Index, summary string) (*Generation, error) {
	if index == nil {
		return nil, domain.NewError(domain.CodeEmbeddingMismatch, "nil index")
	}
	if len(chunks) != index.Size() {
		return nil, domain.Errorf(domain.CodeEmbeddingMismatch,
			"%d chunks but index holds %d vectors", len(chunks), index.Size())
	}
	gen := &Generation{
		ID:        uuid.NewString(),
		Chunks:    append([]domain.Chunk(nil), chunks...),
		Index:     index,
		Summary:   summary,
		CreatedAt: time.Now(),
	}
	s.current.Store(gen)
	return gen, nil
}

// Snapshot returns the active generation, or false if nothing was ingested.
func (s *Store) Snapshot() (*Generation, bool) {
	gen := s.current.Load()
	return gen, gen != nil
}

// Ready reports whether any ingestion has completed.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}
