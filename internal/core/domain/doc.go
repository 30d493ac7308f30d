// Package domain defines the core business entities for Lectern.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - NormalizedDocument: A unit of extracted text with source metadata
//   - Chunk: A bounded window of text ready for embedding
//   - IndexEntry: A chunk together with its embedding vector
//   - AnswerResult: A generated answer plus the passages that grounded it
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
