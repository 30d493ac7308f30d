package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// PDFNormaliser turns a PDF file into one NormalizedDocument per page.
type PDFNormaliser interface {
	// Normalise returns domain.ErrNotFound if path does not exist.
	Normalise(ctx context.Context, path string) ([]domain.NormalizedDocument, error)
}

// TranscriptNormaliser turns a timestamped transcript into one
// NormalizedDocument per well-formed line.
type TranscriptNormaliser interface {
	// Normalise returns domain.ErrNotFound if transcriptPath does not exist.
	// videoID names the video the transcript belongs to; it is not opened.
	Normalise(ctx context.Context, transcriptPath, videoID string) ([]domain.NormalizedDocument, error)
}
