package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

type mockAnswerService struct {
	result   *domain.AnswerResult
	hits     []domain.ScoredChunk
	err      error
	lastTopK int
	question string
}

func (m *mockAnswerService) Answer(_ context.Context, question string, topK int) (*domain.AnswerResult, error) {
	m.question = question
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAnswerService) Retrieve(_ context.Context, question string, topK int) ([]domain.ScoredChunk, error) {
	m.question = question
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

type mockIngestService struct {
	result *domain.IngestResult
	err    error

	pdfs        []string
	videos      [][2]string
	texts       []string
	textMeta    []map[string]any
	documents   []domain.NormalizedDocument
	batchCalled int
}

func (m *mockIngestService) res() (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.IngestResult{Documents: 1, Chunks: 1}, nil
	}
	return m.result, nil
}

func (m *mockIngestService) IngestPDF(_ context.Context, path string) (*domain.IngestResult, error) {
	m.pdfs = append(m.pdfs, path)
	return m.res()
}

func (m *mockIngestService) IngestVideoTranscript(_ context.Context, videoID, transcriptPath string) (*domain.IngestResult, error) {
	m.videos = append(m.videos, [2]string{videoID, transcriptPath})
	return m.res()
}

func (m *mockIngestService) IngestText(_ context.Context, text string, metadata map[string]any) (*domain.IngestResult, error) {
	m.texts = append(m.texts, text)
	m.textMeta = append(m.textMeta, metadata)
	return m.res()
}

func (m *mockIngestService) IngestDocuments(_ context.Context, docs []domain.NormalizedDocument) (*domain.IngestResult, error) {
	m.batchCalled++
	m.documents = append(m.documents, docs...)
	return m.res()
}

type mockIndexService struct {
	status *domain.IndexStatus
	err    error
	resets int
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

func (m *mockIndexService) Reset(_ context.Context) error {
	m.resets++
	return m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error

	embeddingCalls []string
	llmCalls       []string
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.IndexDir = "/tmp/lectern"
	return &mockSettingsService{settings: s}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.embeddingCalls = append(m.embeddingCalls, string(provider)+"|"+model+"|"+apiKey)
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.llmCalls = append(m.llmCalls, string(provider)+"|"+model+"|"+apiKey)
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetChunking(size, overlap int) error {
	chunk := domain.ChunkSettings{Size: size, Overlap: overlap}
	if err := chunk.Validate(); err != nil {
		return err
	}
	m.settings.Chunk = chunk
	return nil
}

func (m *mockSettingsService) SetDevice(device domain.Device) error {
	if !device.IsValid() {
		return domain.ErrConfiguration
	}
	m.settings.Device = device
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.validateErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.validateErr }

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, s *Services, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand(s)
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
