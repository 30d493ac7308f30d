package mcp

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result   *domain.AnswerResult
	hits     []domain.ScoredChunk
	err      error
	lastTopK int
}

func (m *mockAnswerService) Answer(_ context.Context, _ string, topK int) (*domain.AnswerResult, error) {
	m.lastTopK = topK
	return m.result, m.err
}

func (m *mockAnswerService) Retrieve(_ context.Context, _ string, topK int) ([]domain.ScoredChunk, error) {
	m.lastTopK = topK
	return m.hits, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *domain.IngestResult
	err    error
	calls  []string
}

func (m *mockIngestService) IngestPDF(_ context.Context, path string) (*domain.IngestResult, error) {
	m.calls = append(m.calls, "pdf:"+path)
	return m.result, m.err
}

func (m *mockIngestService) IngestVideoTranscript(
	_ context.Context,
	videoID, transcriptPath string,
) (*domain.IngestResult, error) {
	m.calls = append(m.calls, "video:"+videoID+":"+transcriptPath)
	return m.result, m.err
}

func (m *mockIngestService) IngestText(
	_ context.Context,
	text string,
	_ map[string]any,
) (*domain.IngestResult, error) {
	m.calls = append(m.calls, "text:"+text)
	return m.result, m.err
}

func (m *mockIngestService) IngestDocuments(
	_ context.Context,
	_ []domain.NormalizedDocument,
) (*domain.IngestResult, error) {
	m.calls = append(m.calls, "docs")
	return m.result, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status *domain.IndexStatus
	err    error
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockIndexService) Reset(_ context.Context) error {
	return m.err
}

func newTestPorts() *Ports {
	return &Ports{
		Answer: &mockAnswerService{},
		Index:  &mockIndexService{status: &domain.IndexStatus{}},
	}
}
