// Package tui provides an interactive terminal chat over the local index.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Answer answers questions. Required.
	Answer driving.AnswerService

	// Index feeds the status bar. Optional.
	Index driving.IndexService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, index driving.IndexService) *Ports {
	return &Ports{
		Answer: answer,
		Index:  index,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
