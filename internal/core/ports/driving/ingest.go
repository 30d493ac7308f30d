package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// IngestService adds study material to the index.
// Every method normalises, chunks and inserts in one call, and returns
// domain.ErrNotFound without touching the index when a path is missing.
type IngestService interface {
	// IngestPDF indexes every page of a PDF file.
	IngestPDF(ctx context.Context, path string) (*domain.IngestResult, error)

	// IngestVideoTranscript indexes a timestamped transcript belonging to videoID.
	IngestVideoTranscript(ctx context.Context, videoID, transcriptPath string) (*domain.IngestResult, error)

	// IngestText indexes caller-supplied text.
	IngestText(ctx context.Context, text string, metadata map[string]any) (*domain.IngestResult, error)

	// IngestDocuments indexes already-normalised records in one batch.
	IngestDocuments(ctx context.Context, docs []domain.NormalizedDocument) (*domain.IngestResult, error)
}
