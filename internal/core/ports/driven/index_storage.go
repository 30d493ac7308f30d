package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// IndexStorage persists whole-index snapshots.
type IndexStorage interface {
	// Exists reports whether a persisted index is present.
	Exists() bool

	// Load reads the manifest and all entries ordered by Seq.
	Load(ctx context.Context) (domain.IndexManifest, []domain.IndexEntry, error)

	// Save atomically replaces the persisted index with the given snapshot.
	// A failed Save leaves the previous snapshot intact.
	Save(ctx context.Context, manifest domain.IndexManifest, entries []domain.IndexEntry) error

	// Remove deletes the persisted index.
	Remove(ctx context.Context) error

	// Path returns the on-disk location.
	Path() string
}
