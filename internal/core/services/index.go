package services

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driving.IndexService = (*IndexStore)(nil)

// IndexStore owns the vector index for one index directory.
//
// Inserts are serialised by insertMu. Each insert builds a new immutable
// snapshot, persists it, and only then publishes it under mu, so queries
// never block on an insert in progress and never see a half-written batch.
type IndexStore struct {
	storage   driven.IndexStorage
	engine    driven.VectorEngine
	embedder  driven.EmbeddingService
	timeout   time.Duration
	batchSize int
	now       func() time.Time

	insertMu sync.Mutex

	mu       sync.RWMutex
	index    driven.VectorIndex
	manifest domain.IndexManifest
	nextSeq  int64
}

// NewIndexStore creates an index store. Call Open to load a persisted index.
// The timeout bounds each embedding request; zero leaves requests bounded
// only by the caller's context.
func NewIndexStore(
	storage driven.IndexStorage,
	engine driven.VectorEngine,
	embedder driven.EmbeddingService,
	timeout time.Duration,
) *IndexStore {
	return &IndexStore{
		storage:  storage,
		engine:   engine,
		embedder: embedder,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Open loads the persisted index if one exists. A missing index is not an
// error; the store simply stays not-ready until the first insert.
func (s *IndexStore) Open(ctx context.Context) error {
	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	if !s.storage.Exists() {
		logger.Debug("No persisted index at %s", s.storage.Path())
		return nil
	}

	done := logger.Timed("load index")
	manifest, entries, err := s.storage.Load(ctx)
	done()
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	if err := s.checkCompatible(manifest); err != nil {
		return err
	}

	index, err := s.engine.Build(ctx, manifest.Dimensions, entries)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	var next int64
	for i := range entries {
		if entries[i].Seq >= next {
			next = entries[i].Seq + 1
		}
	}

	s.mu.Lock()
	s.index = index
	s.manifest = manifest
	s.nextSeq = next
	s.mu.Unlock()

	logger.Info("Loaded index: %d chunks, model %s", index.Len(), manifest.EmbeddingModel)
	return nil
}

// checkCompatible rejects a persisted index built with another embedding model.
func (s *IndexStore) checkCompatible(manifest domain.IndexManifest) error {
	if manifest.EmbeddingModel != s.embedder.ModelName() {
		return fmt.Errorf("%w: index built with %q, configured model is %q; run 'lectern index reset' and re-ingest",
			domain.ErrEmbeddingMismatch, manifest.EmbeddingModel, s.embedder.ModelName())
	}
	if dims := s.embedder.Dimensions(); dims > 0 && dims != manifest.Dimensions {
		return fmt.Errorf("%w: index has %d dimensions, model produces %d",
			domain.ErrEmbeddingMismatch, manifest.Dimensions, dims)
	}
	return nil
}

// Insert embeds chunks and adds them to the index, persisting the whole index
// before the new snapshot becomes visible. Empty input is a no-op.
func (s *IndexStore) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := s.embedBatch(ctx, texts)
	if err != nil {
		return err
	}

	s.mu.RLock()
	current := s.index
	seq := s.nextSeq
	s.mu.RUnlock()

	dims := len(vectors[0])
	if current != nil {
		dims = current.Dimensions()
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for i := range chunks {
		if len(vectors[i]) == 0 || len(vectors[i]) != dims {
			return fmt.Errorf("%w: chunk %d embedded to %d dimensions, expected %d",
				domain.ErrEmbedding, i, len(vectors[i]), dims)
		}
		entries[i] = domain.IndexEntry{
			ChunkID:   chunks[i].ID,
			Seq:       seq + int64(i),
			Embedding: vectors[i],
			Text:      chunks[i].Text,
			Metadata:  chunks[i].Metadata,
		}
	}

	var next driven.VectorIndex
	if current == nil {
		next, err = s.engine.Build(ctx, dims, entries)
	} else {
		next, err = current.Add(ctx, entries)
	}
	if err != nil {
		return fmt.Errorf("add to index: %w", err)
	}

	manifest := domain.IndexManifest{
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     dims,
		Entries:        next.Len(),
		UpdatedAt:      s.now(),
	}

	done := logger.Timed("persist index")
	err = s.storage.Save(ctx, manifest, next.Entries())
	done()
	if err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	s.mu.Lock()
	s.index = next
	s.manifest = manifest
	s.nextSeq = seq + int64(len(entries))
	s.mu.Unlock()

	logger.Debug("Inserted %d chunks, index now holds %d", len(entries), next.Len())
	return nil
}

// Query returns up to topK chunks most similar to text, highest score first.
// Each result owns its metadata map; changing it does not touch the index.
func (s *IndexStore) Query(ctx context.Context, text string, topK int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()

	if index == nil {
		return nil, domain.ErrIndexNotReady
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", domain.ErrInvalidInput, topK)
	}

	vectors, err := s.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors[0]) != index.Dimensions() {
		return nil, fmt.Errorf("%w: query embedded to %d dimensions, index has %d",
			domain.ErrEmbedding, len(vectors[0]), index.Dimensions())
	}

	done := logger.Timed("vector search")
	hits, err := index.Search(ctx, vectors[0], topK)
	done()
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.ScoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:       hit.Entry.ChunkID,
				Text:     hit.Entry.Text,
				Metadata: maps.Clone(hit.Entry.Metadata),
			},
			Score: hit.Similarity,
		}
	}
	return results, nil
}

// Status reports whether the index is ready and what it contains.
func (s *IndexStore) Status(_ context.Context) (*domain.IndexStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &domain.IndexStatus{
		Ready:    s.index != nil,
		Path:     s.storage.Path(),
		Manifest: s.manifest,
	}, nil
}

// Reset deletes the persisted index. The store is not-ready afterwards.
func (s *IndexStore) Reset(ctx context.Context) error {
	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	if err := s.storage.Remove(ctx); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	s.mu.Lock()
	s.index = nil
	s.manifest = domain.IndexManifest{}
	s.nextSeq = 0
	s.mu.Unlock()

	logger.Info("Index reset: %s", s.storage.Path())
	return nil
}

// embedBatchSize caps how many texts go to the embedding service per request.
const embedBatchSize = 32

// embedBatch embeds texts in requests of at most batchSize texts. The
// configured timeout bounds each request, not the whole batch, so a large
// ingest is not failed by a timeout sized for one request. Every failure
// maps to domain.ErrEmbedding.
func (s *IndexStore) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}

	size := s.batchSize
	if size < 1 {
		size = embedBatchSize
	}

	done := logger.Timed(fmt.Sprintf("embed %d texts", len(texts)))
	defer done()

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		batch, err := s.embedRequest(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (s *IndexStore) embedRequest(ctx context.Context, texts []string) ([][]float32, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(vectors), len(texts))
	}
	return vectors, nil
}
