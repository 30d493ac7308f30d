package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Describe turns a service error into a message with a next step, when
// there is one the user can take.
func Describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return "No documents ingested yet. Run 'lectern ingest pdf|video|text' first."
	case errors.Is(err, domain.ErrEmbeddingMismatch):
		return fmt.Sprintf("%v\nRun 'lectern index reset' and ingest your material again.", err)
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return fmt.Sprintf("%v\nRun 'lectern settings embedding' to configure a provider.", err)
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Sprintf("%v\nRun 'lectern settings llm' to configure a provider.", err)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("File not found: %v", err)
	default:
		return err.Error()
	}
}
