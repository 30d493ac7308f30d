// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - PDFNormaliser, TranscriptNormaliser: Turn source files into NormalizedDocuments
//   - PostProcessor, PostProcessorPipeline: Split documents into chunks
//   - EmbeddingService: Turns text into vectors
//   - VectorEngine, VectorIndex: Similarity search over embedded chunks
//   - IndexStorage: Whole-index snapshot persistence
//   - LLMService: Answer generation
//   - PromptStore: User-editable prompt templates
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
