// Package chunker provides a fixed-size sliding-window chunking processor.
//
// Sizes are measured in runes so multi-byte text (e.g. Traditional Chinese)
// is never split inside a character.
package chunker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits document text into fixed-size overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker. It fails with domain.ErrConfiguration when the
// overlap is not strictly smaller than the chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	settings := domain.ChunkSettings{Size: p.chunkSize, Overlap: p.overlap}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from the document.
func (p *Processor) Process(
	_ context.Context,
	doc *domain.NormalizedDocument,
	_ []domain.Chunk,
) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	return p.split(doc), nil
}

// Chunk splits every document in order. Chunks from the same document are
// contiguous and left to right.
func Chunk(docs []domain.NormalizedDocument, size, overlap int) ([]domain.Chunk, error) {
	p, err := New(WithChunkSize(size), WithOverlap(overlap))
	if err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for i := range docs {
		chunks = append(chunks, p.split(&docs[i])...)
	}
	return chunks, nil
}

// split emits windows of chunkSize runes advancing by chunkSize-overlap.
// It stops as soon as a window reaches the end of the text, so the last
// chunk is never wholly contained in the one before it.
func (p *Processor) split(doc *domain.NormalizedDocument) []domain.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	stride := p.chunkSize - p.overlap
	estimated := (len(runes) / stride) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	for start, position := 0, 0; ; start, position = start+stride, position+1 {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			Text:     string(runes[start:end]),
			Position: position,
			Metadata: chunkMetadata(doc),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// chunkMetadata copies the parent metadata verbatim and adds source_type,
// page_number and timestamp when present.
func chunkMetadata(doc *domain.NormalizedDocument) map[string]any {
	meta := make(map[string]any, len(doc.Metadata)+3)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta[domain.MetaSourceType] = doc.SourceType.String()
	if doc.PageNumber != nil {
		meta[domain.MetaPageNumber] = *doc.PageNumber
	}
	if doc.Timestamp != nil {
		meta[domain.MetaTimestamp] = *doc.Timestamp
	}
	return meta
}
