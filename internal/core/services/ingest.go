package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
	"github.com/custodia-labs/lectern/internal/normalisers/text"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService normalises source material, chunks it and inserts the chunks
// into the index in a single batch per call.
type IngestService struct {
	pdf        driven.PDFNormaliser
	transcript driven.TranscriptNormaliser
	pipeline   driven.PostProcessorPipeline
	index      *IndexStore
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	pdf driven.PDFNormaliser,
	transcript driven.TranscriptNormaliser,
	pipeline driven.PostProcessorPipeline,
	index *IndexStore,
) *IngestService {
	return &IngestService{
		pdf:        pdf,
		transcript: transcript,
		pipeline:   pipeline,
		index:      index,
	}
}

// IngestPDF indexes every page of the PDF at path.
func (s *IngestService) IngestPDF(ctx context.Context, path string) (*domain.IngestResult, error) {
	logger.Section("Ingest PDF")
	logger.Debug("Path: %s", path)

	done := logger.Timed("pdf normalise")
	docs, err := s.pdf.Normalise(ctx, path)
	done()
	if err != nil {
		return nil, fmt.Errorf("normalise pdf: %w", err)
	}

	return s.ingest(ctx, docs)
}

// IngestVideoTranscript indexes the transcript at transcriptPath for videoID.
func (s *IngestService) IngestVideoTranscript(
	ctx context.Context, videoID, transcriptPath string,
) (*domain.IngestResult, error) {
	logger.Section("Ingest Transcript")
	logger.Debug("Video: %s, transcript: %s", videoID, transcriptPath)

	done := logger.Timed("transcript normalise")
	docs, err := s.transcript.Normalise(ctx, transcriptPath, videoID)
	done()
	if err != nil {
		return nil, fmt.Errorf("normalise transcript: %w", err)
	}
	if len(docs) == 0 {
		logger.Warn("transcript %s has no timestamped lines", transcriptPath)
	}

	return s.ingest(ctx, docs)
}

// IngestText indexes body with the caller's metadata.
func (s *IngestService) IngestText(
	ctx context.Context, body string, metadata map[string]any,
) (*domain.IngestResult, error) {
	logger.Section("Ingest Text")

	doc := text.Normalise(body, metadata)
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return s.ingest(ctx, []domain.NormalizedDocument{doc})
}

// IngestDocuments validates and indexes caller-built records as one batch.
func (s *IngestService) IngestDocuments(
	ctx context.Context, docs []domain.NormalizedDocument,
) (*domain.IngestResult, error) {
	logger.Section("Ingest Documents")

	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}

	return s.ingest(ctx, docs)
}

func (s *IngestService) ingest(ctx context.Context, docs []domain.NormalizedDocument) (*domain.IngestResult, error) {
	logger.Debug("Normalised %d records", len(docs))

	done := logger.Timed("chunk")
	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			done()
			return nil, fmt.Errorf("chunk record %d: %w", i, err)
		}
		chunks = append(chunks, docChunks...)
	}
	done()
	logger.Debug("Produced %d chunks", len(chunks))

	if err := s.index.Insert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	logger.Info("Ingested %d records as %d chunks", len(docs), len(chunks))
	return &domain.IngestResult{
		Documents: len(docs),
		Chunks:    len(chunks),
	}, nil
}
