// Package vectorindex implements an exact nearest-neighbor index over a fixed
// set of embeddings.
package vectorindex

import (
	"math"
	"sort"

	"docrag/internal/domain"
)

// Index is a flat squared-L2 index. It is built once and read-only afterwards,
// so it is safe for concurrent Search calls. Positions match the order of the
// embeddings passed to Build.
type Index struct {
	dimension int
	vectors   [][]float32
}

// Build copies embeddings into a new index. All vectors must share the length
// of the first one.
func Build(embeddings [][]float32) (*Index, error) {
	if len(embeddings) == 0 {
		return &Index{}, nil
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return nil, domain.NewError(domain.CodeDimensionMismatch, "embedding 0 is empty")
	}
	vectors := make([][]float32, len(embeddings))
	for i, v := range embeddings {
		if len(v) != dim {
			return nil, domain.Errorf(domain.CodeDimensionMismatch,
				"embedding %d has dimension %d, want %d", i, len(v), dim)
		}
		vectors[i] = append([]float32(nil), v...)
	}
	return &Index{dimension: dim, vectors: vectors}, nil
}

// Size returns the number of stored vectors.
func (x *Index) Size() int {
	if x == nil {
		return 0
	}
	return len(x.vectors)
}

// Dimension returns the vector length, or 0 for an empty index.
func (x *Index) Dimension() int {
	if x == nil {
		return 0
	}
	return x.dimension
}

// Search returns up to k neighbors of query ordered by ascending distance,
// ties broken by lower position. Distances are squared Euclidean; vectors are
// not normalized.
func (x *Index) Search(query []float32, k int) ([]domain.Neighbor, error) {
	if k < 1 {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "k must be >= 1, got %d", k)
	}
	if x.Size() == 0 {
		return []domain.Neighbor{}, nil
	}
	if len(query) != x.dimension {
		return nil, domain.Errorf(domain.CodeDimensionMismatch,
			"query has dimension %d, index has %d", len(query), x.dimension)
	}

	hits := make([]domain.Neighbor, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = domain.Neighbor{Position: i, Distance: squaredL2(query, v)}
	}
	sort.Slice(hits, func(i, j int) bool { return before(hits[i], hits[j]) })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func squaredL2(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// before orders by distance, then position. NaN distances sort last.
func before(a, b domain.Neighbor) bool {
	aNaN, bNaN := math.IsNaN(a.Distance), math.IsNaN(b.Distance)
	switch {
	case aNaN != bNaN:
		return bNaN
	case !aNaN && a.Distance != b.Distance:
		return a.Distance < b.Distance
	}
	return a.Position < b.Position
}
