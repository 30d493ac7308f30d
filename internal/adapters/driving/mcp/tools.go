package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed material"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of passages to ground the answer on (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"response"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one passage returned alongside an answer or by retrieve.
type SourceOutput struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"text to find similar passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of passages (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []SourceOutput `json:"passages"`
	Count    int            `json:"count"`
}

// IndexStatusInput is the (empty) input schema for the index_status tool.
type IndexStatusInput struct{}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Text     string         `json:"text" jsonschema:"the note text to index"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"optional string, number or bool values; file_name defaults to text"`
}

// IngestPDFInput is the input schema for the ingest_pdf tool.
type IngestPDFInput struct {
	Path string `json:"path" jsonschema:"local path of the PDF to index"`
}

// IngestTranscriptInput is the input schema for the ingest_transcript tool.
type IngestTranscriptInput struct {
	VideoID        string `json:"video_id" jsonschema:"name or path of the video the transcript belongs to"`
	TranscriptPath string `json:"transcript_path" jsonschema:"local path of the timestamped transcript"`
}

// IngestOutput is the output schema for every ingest tool.
type IngestOutput struct {
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	Warning   string `json:"warning,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using passages retrieved from the indexed study material",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the passages most similar to a query, without generating an answer",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report whether anything has been ingested, which embedding model built the index, and its size",
	}, s.handleIndexStatus)

	if s.ports.Ingest == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Add a text note to the index",
	}, s.handleIngestText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_pdf",
		Description: "Add every page of a local PDF to the index",
	}, s.handleIngestPDF)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_transcript",
		Description: "Add a timestamped lecture transcript to the index",
	}, s.handleIngestTranscript)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Answer.Answer(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:  result.Answer,
		Sources: make([]SourceOutput, len(result.Sources)),
	}
	for i, src := range result.Sources {
		output.Sources[i] = SourceOutput{Text: src.Text, Score: src.Score, Metadata: src.Metadata}
	}
	return nil, output, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	hits, err := s.ports.Answer.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, toolError(err)
	}

	output := RetrieveOutput{
		Passages: make([]SourceOutput, len(hits)),
		Count:    len(hits),
	}
	for i, hit := range hits {
		output.Passages[i] = SourceOutput{Text: hit.Chunk.Text, Score: hit.Score, Metadata: hit.Chunk.Metadata}
	}
	return nil, output, nil
}

func (s *Server) handleIndexStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IndexStatusInput,
) (*mcp.CallToolResult, indexStatusInfo, error) {
	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, indexStatusInfo{}, err
	}
	return nil, statusInfo(status), nil
}

func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	return ingestOutput(s.ports.Ingest.IngestText(ctx, input.Text, input.Metadata))
}

func (s *Server) handleIngestPDF(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestPDFInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	return ingestOutput(s.ports.Ingest.IngestPDF(ctx, input.Path))
}

func (s *Server) handleIngestTranscript(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTranscriptInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	res, out, err := ingestOutput(s.ports.Ingest.IngestVideoTranscript(ctx, input.VideoID, input.TranscriptPath))
	if err == nil && out.Documents == 0 {
		out.Warning = "no timestamped lines found; expected lines like \"00:01:05 text\""
	}
	return res, out, err
}

func ingestOutput(result *domain.IngestResult, err error) (*mcp.CallToolResult, IngestOutput, error) {
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}
	return nil, IngestOutput{Documents: result.Documents, Chunks: result.Chunks}, nil
}

// toolError adds guidance an assistant can act on to errors it can fix.
func toolError(err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return fmt.Errorf("%w; call an ingest tool first", err)
	case errors.Is(err, domain.ErrEmbeddingMismatch):
		return fmt.Errorf("%w; run 'lectern index reset' and ingest again", err)
	default:
		return err
	}
}
