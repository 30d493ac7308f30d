package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// AnswerService answers questions from the indexed material.
type AnswerService interface {
	// Answer retrieves up to topK passages and generates a grounded answer.
	// Returns domain.ErrIndexNotReady before anything has been ingested.
	Answer(ctx context.Context, question string, topK int) (*domain.AnswerResult, error)

	// Retrieve returns the passages Answer would ground on, without generating.
	Retrieve(ctx context.Context, question string, topK int) ([]domain.ScoredChunk, error)
}
