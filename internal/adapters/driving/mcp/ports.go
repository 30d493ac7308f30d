package mcp

import (
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer retrieves passages and generates answers.
	Answer driving.AnswerService

	// Ingest adds material to the index. Optional; ingest tools are only
	// registered when it is set.
	Ingest driving.IngestService

	// Index reports index status.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
