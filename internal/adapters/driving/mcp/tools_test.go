package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		answer := &mockAnswerService{
			result: &domain.AnswerResult{
				Answer: "Entropy measures disorder.",
				Sources: []domain.AnswerSource{
					{Text: "entropy is...", Score: 0.91, Metadata: map[string]any{"page_number": 3}},
				},
			},
		}
		ports := newTestPorts()
		ports.Answer = answer
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "what is entropy?", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, answer.lastTopK)
		assert.Equal(t, "Entropy measures disorder.", output.Answer)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "entropy is...", output.Sources[0].Text)
		assert.InDelta(t, 0.91, output.Sources[0].Score, 1e-9)
		assert.Equal(t, 3, output.Sources[0].Metadata["page_number"])
	})

	t.Run("index not ready adds guidance", func(t *testing.T) {
		ports := newTestPorts()
		ports.Answer = &mockAnswerService{err: domain.ErrIndexNotReady}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.ErrorIs(t, err, domain.ErrIndexNotReady)
		assert.Contains(t, err.Error(), "ingest")
	})

	t.Run("embedding mismatch suggests reset", func(t *testing.T) {
		ports := newTestPorts()
		ports.Answer = &mockAnswerService{err: fmt.Errorf("open: %w", domain.ErrEmbeddingMismatch)}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "lectern index reset")
	})

	t.Run("passes other errors through", func(t *testing.T) {
		ports := newTestPorts()
		ports.Answer = &mockAnswerService{err: errors.New("generation failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.Error(t, err)
		assert.Equal(t, "generation failed", err.Error())
	})
}

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	answer := &mockAnswerService{
		hits: []domain.ScoredChunk{
			{Chunk: domain.Chunk{Text: "first", Metadata: map[string]any{"file_name": "a.pdf"}}, Score: 0.8},
			{Chunk: domain.Chunk{Text: "second"}, Score: 0.5},
		},
	}
	ports := newTestPorts()
	ports.Answer = answer
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "q", TopK: 5})

	require.NoError(t, err)
	assert.Equal(t, 5, answer.lastTopK)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "first", output.Passages[0].Text)
	assert.Equal(t, "a.pdf", output.Passages[0].Metadata["file_name"])
	assert.Equal(t, "second", output.Passages[1].Text)
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	ingest := &mockIngestService{result: &domain.IngestResult{Documents: 2, Chunks: 7}}
	ports := newTestPorts()
	ports.Ingest = ingest
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleIngestPDF(ctx, nil, IngestPDFInput{Path: "/tmp/notes.pdf"})
	require.NoError(t, err)
	assert.Equal(t, IngestOutput{Documents: 2, Chunks: 7}, out)

	_, _, err = server.handleIngestTranscript(ctx, nil, IngestTranscriptInput{VideoID: "lec1.mp4", TranscriptPath: "/tmp/lec1.txt"})
	require.NoError(t, err)

	_, _, err = server.handleIngestText(ctx, nil, IngestTextInput{Text: "a note"})
	require.NoError(t, err)

	assert.Equal(t, []string{"pdf:/tmp/notes.pdf", "video:lec1.mp4:/tmp/lec1.txt", "text:a note"}, ingest.calls)
}

func TestServer_handleIngestTranscript_NoTimestampedLines(t *testing.T) {
	ports := newTestPorts()
	ports.Ingest = &mockIngestService{result: &domain.IngestResult{}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleIngestTranscript(context.Background(), nil,
		IngestTranscriptInput{VideoID: "lec1.mp4", TranscriptPath: "/tmp/lec1.txt"})

	require.NoError(t, err)
	assert.Zero(t, out.Documents)
	assert.Contains(t, out.Warning, "no timestamped lines")
}

func TestServer_handleIngestTranscript_NoWarningWhenIndexed(t *testing.T) {
	ports := newTestPorts()
	ports.Ingest = &mockIngestService{result: &domain.IngestResult{Documents: 3, Chunks: 2}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleIngestTranscript(context.Background(), nil,
		IngestTranscriptInput{VideoID: "lec1.mp4", TranscriptPath: "/tmp/lec1.txt"})

	require.NoError(t, err)
	assert.Equal(t, IngestOutput{Documents: 3, Chunks: 2}, out)
}

func TestServer_handleIngest_Error(t *testing.T) {
	ports := newTestPorts()
	ports.Ingest = &mockIngestService{err: domain.ErrNotFound}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleIngestPDF(context.Background(), nil, IngestPDFInput{Path: "/missing.pdf"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, IngestOutput{}, out)
}

func TestServer_handleIndexStatus(t *testing.T) {
	ports := newTestPorts()
	ports.Index = &mockIndexService{status: &domain.IndexStatus{Path: "/data/index"}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleIndexStatus(context.Background(), nil, IndexStatusInput{})

	require.NoError(t, err)
	assert.False(t, out.Ready)
	assert.Equal(t, "/data/index", out.Path)
	assert.Empty(t, out.EmbeddingModel)
	assert.Empty(t, out.UpdatedAt)
}
