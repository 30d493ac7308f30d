package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// IndexService exposes index housekeeping.
type IndexService interface {
	// Status reports whether an index exists and what it was built with.
	Status(ctx context.Context) (*domain.IndexStatus, error)

	// Reset deletes the index so it can be rebuilt, e.g. after an
	// embedding model change.
	Reset(ctx context.Context) error
}
