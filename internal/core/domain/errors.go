package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a source file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates invalid chunking, provider or index parameters.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIndexNotReady indicates a query was issued before anything was ingested.
	ErrIndexNotReady = errors.New("index not ready: ingest documents first")

	// ErrEmbedding indicates the embedding provider failed or returned unusable vectors.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the language model failed to produce an answer.
	ErrGeneration = errors.New("generation failed")

	// ErrPersist indicates the index snapshot could not be written or read.
	ErrPersist = errors.New("index persistence failed")

	// ErrUnsupportedType indicates an unknown source type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Index consistency errors.

	// ErrEmbeddingMismatch indicates the persisted index was built with a different
	// embedding model or dimension. The index must be reset and rebuilt.
	ErrEmbeddingMismatch = fmt.Errorf("%w: embedding model does not match index", ErrConfiguration)
)
