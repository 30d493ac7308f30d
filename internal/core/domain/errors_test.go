package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrIndexNotReady", ErrIndexNotReady},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrGeneration", ErrGeneration},
		{"ErrPersist", ErrPersist},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrEmbeddingMismatch", ErrEmbeddingMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrEmbeddingMismatch_IsConfiguration(t *testing.T) {
	assert.True(t, errors.Is(ErrEmbeddingMismatch, ErrConfiguration))
	assert.False(t, errors.Is(ErrConfiguration, ErrEmbeddingMismatch))
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrIndexNotReady, ErrNotFound))
	assert.False(t, errors.Is(ErrEmbedding, ErrGeneration))
	assert.False(t, errors.Is(ErrGeneration, ErrEmbedding))
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("ingest pdf: %w", ErrNotFound)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Contains(t, wrapped.Error(), "not found")
}
