// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/lectern/internal/core/domain"
)

// QuestionSubmitted is a command to answer a question.
type QuestionSubmitted struct {
	Question string
	TopK     int
}

// AnswerCompleted carries an answer, or the reason there is none, back to the model.
type AnswerCompleted struct {
	Question string
	Result   *domain.AnswerResult
	Err      error
}

// IndexStatusLoaded carries the index status shown in the status bar.
type IndexStatusLoaded struct {
	Status *domain.IndexStatus
	Err    error
}

// SourceSelected is sent when a source passage is selected.
type SourceSelected struct {
	Index int
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question input and answer view.
	ViewChat ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
