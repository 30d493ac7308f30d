package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// VectorEngine builds searchable indexes from embedded chunks.
type VectorEngine interface {
	// Build creates an index of the given dimension containing entries.
	Build(ctx context.Context, dimensions int, entries []domain.IndexEntry) (VectorIndex, error)
}

// VectorIndex is an immutable similarity index. Add returns a new index and
// leaves the receiver untouched, so readers of the old snapshot are never
// affected by an insertion in progress.
type VectorIndex interface {
	// Add returns a new index containing the receiver's entries plus entries.
	Add(ctx context.Context, entries []domain.IndexEntry) (VectorIndex, error)

	// Search finds the k most similar entries to the query vector, ordered by
	// descending similarity with ties broken by ascending Seq.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Entries returns all entries in insertion order.
	Entries() []domain.IndexEntry

	// Len returns the number of entries.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Entry is the matched entry.
	Entry domain.IndexEntry

	// Similarity is the normalised cosine similarity score (0-1).
	Similarity float64
}
