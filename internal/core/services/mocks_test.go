package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	storagemem "github.com/custodia-labs/lectern/internal/adapters/driven/storage/memory"
	vectormem "github.com/custodia-labs/lectern/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// --- Mock implementations ---

// keywordEmbedder embeds text as keyword counts over a fixed vocabulary,
// which makes similarity ordering predictable in tests.
type keywordEmbedder struct {
	mu       sync.Mutex
	vocab    []string
	model    string
	embedErr error
	dimsOver int // when > 0, vectors have this length instead
	calls    int
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{
		vocab: []string{"apple", "banana", "cherry"},
		model: "keyword-test",
	}
}

func (m *keywordEmbedder) vector(text string) []float32 {
	n := len(m.vocab)
	if m.dimsOver > 0 {
		n = m.dimsOver
	}
	vec := make([]float32, n)
	lower := strings.ToLower(text)
	for i, word := range m.vocab {
		if i < n {
			vec[i] = float32(strings.Count(lower, word))
		}
	}
	return vec
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int   { return len(m.vocab) }
func (m *keywordEmbedder) ModelName() string { return m.model }
func (m *keywordEmbedder) Ping(_ context.Context) error {
	return nil
}
func (m *keywordEmbedder) Close() error { return nil }

// slowEmbedder takes perText to embed each text and honours cancellation,
// like a remote embedding service under load.
type slowEmbedder struct {
	*keywordEmbedder
	perText time.Duration

	mu    sync.Mutex
	sizes []int
}

func (m *slowEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.sizes = append(m.sizes, len(texts))
	m.mu.Unlock()

	select {
	case <-time.After(time.Duration(len(texts)) * m.perText):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return m.keywordEmbedder.EmbedBatch(ctx, texts)
}

// mockLLM records the last prompt it was asked to complete.
type mockLLM struct {
	mu         sync.Mutex
	response   string
	err        error
	lastPrompt string
	lastOpts   driven.GenerateOptions
	calls      int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// --- Helpers ---

func newTestIndex(t *testing.T, embedder driven.EmbeddingService) (*IndexStore, *storagemem.IndexStorage) {
	t.Helper()
	storage := storagemem.NewIndexStorage()
	store := NewIndexStore(storage, vectormem.NewEngine(), embedder, 0)
	require.NoError(t, store.Open(context.Background()))
	return store, storage
}

func textChunk(id, text string) domain.Chunk {
	return domain.Chunk{
		ID:       id,
		Text:     text,
		Metadata: map[string]any{domain.MetaFileName: id + ".txt"},
	}
}
