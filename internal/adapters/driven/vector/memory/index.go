// Package memory provides an exact, brute-force cosine similarity index held
// in memory. Index values are immutable: Add returns a new index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Engine and Index implement the interfaces.
var (
	_ driven.VectorEngine = (*Engine)(nil)
	_ driven.VectorIndex  = (*Index)(nil)
)

// Engine builds in-memory indexes.
type Engine struct{}

// NewEngine creates an in-memory vector engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Build creates an index of the given dimension containing entries.
func (e *Engine) Build(ctx context.Context, dimensions int, entries []domain.IndexEntry) (driven.VectorIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive, got %d", domain.ErrConfiguration, dimensions)
	}
	empty := &Index{dims: dimensions}
	if len(entries) == 0 {
		return empty, nil
	}
	return empty.Add(ctx, entries)
}

// Index is an immutable set of embedded entries.
type Index struct {
	dims    int
	entries []domain.IndexEntry
	norms   []float64
}

// Add returns a new index with entries appended. The receiver is unchanged.
func (ix *Index) Add(_ context.Context, entries []domain.IndexEntry) (driven.VectorIndex, error) {
	for i := range entries {
		if len(entries[i].Embedding) != ix.dims {
			return nil, fmt.Errorf("%w: entry %s has %d dimensions, index has %d",
				domain.ErrEmbedding, entries[i].ChunkID, len(entries[i].Embedding), ix.dims)
		}
	}

	next := &Index{
		dims:    ix.dims,
		entries: make([]domain.IndexEntry, 0, len(ix.entries)+len(entries)),
		norms:   make([]float64, 0, len(ix.entries)+len(entries)),
	}
	next.entries = append(next.entries, ix.entries...)
	next.norms = append(next.norms, ix.norms...)
	for i := range entries {
		next.entries = append(next.entries, entries[i])
		next.norms = append(next.norms, norm(entries[i].Embedding))
	}
	return next, nil
}

// Search returns the k most similar entries, best first. Scores are cosine
// similarity mapped from [-1, 1] onto [0, 1]. Equal scores keep insertion order.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != ix.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrEmbedding, len(query), ix.dims)
	}

	qNorm := norm(query)
	hits := make([]driven.VectorHit, len(ix.entries))
	for i := range ix.entries {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = driven.VectorHit{
			Entry:      ix.entries[i],
			Similarity: score(query, ix.entries[i].Embedding, qNorm, ix.norms[i]),
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].Entry.Seq < hits[b].Entry.Seq
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Entries returns all entries in insertion order.
func (ix *Index) Entries() []domain.IndexEntry {
	out := make([]domain.IndexEntry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimensions returns the vector size.
func (ix *Index) Dimensions() int {
	return ix.dims
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// score maps cosine similarity onto [0, 1]. A zero vector scores 0.5.
func score(a, b []float32, aNorm, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0.5
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	cos := dot / (aNorm * bNorm)
	s := (cos + 1) / 2
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
