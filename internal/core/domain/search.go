package domain

import "time"

// IndexEntry is a chunk stored in the vector index together with its embedding.
type IndexEntry struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// Seq is the global insertion order, used to break score ties.
	Seq int64

	// Embedding is the vector produced by the index's embedding model.
	Embedding []float32

	// Text is the chunk text.
	Text string

	// Metadata is the chunk metadata.
	Metadata map[string]any
}

// IndexManifest describes a persisted index.
type IndexManifest struct {
	// EmbeddingModel is the model every entry was embedded with.
	EmbeddingModel string

	// Dimensions is the vector size.
	Dimensions int

	// Entries is the number of stored chunks.
	Entries int

	// UpdatedAt is when the index was last persisted.
	UpdatedAt time.Time
}

// IndexStatus reports whether the index exists and what it contains.
type IndexStatus struct {
	// Ready is true once at least one batch has been inserted.
	Ready bool

	// Path is the on-disk location of the index.
	Path string

	// Manifest is populated when Ready is true.
	Manifest IndexManifest
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the normalised similarity in [0, 1]. Higher is more similar.
	Score float64
}

// AnswerSource is one retrieved passage returned alongside an answer.
type AnswerSource struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// AnswerResult is the orchestrator output.
type AnswerResult struct {
	// Answer is the generated response.
	Answer string `json:"response"`

	// Sources are the retrieved passages in retrieval order.
	Sources []AnswerSource `json:"sources"`
}
