package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func testSources() []domain.AnswerSource {
	return []domain.AnswerSource{
		{Text: "Page three text", Score: 0.92, Metadata: map[string]any{"file_name": "notes.pdf", "page_number": 3}},
		{Text: "Lecture segment", Score: 0.81, Metadata: map[string]any{"file_name": "lec1.mp4", "timestamp": "00:12:05"}},
		{Text: "A note", Score: 0.40, Metadata: map[string]any{"file_name": "text"}},
	}
}

func TestNewSourceList(t *testing.T) {
	l := NewSourceList(nil)

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Count())
	assert.Nil(t, l.SelectedSource())
	assert.Contains(t, l.View(), "No sources")
}

func TestSourceList_Navigation(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())
	assert.Equal(t, "Lecture segment", l.SelectedSource().Text)
}

func TestSourceList_SetSourcesResetsSelection(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())
	l.MoveDown()

	l.SetSources(testSources()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}

func TestSourceList_View(t *testing.T) {
	l := NewSourceList(nil)
	l.SetDimensions(80, 20)
	l.SetSources(testSources())

	view := l.View()

	assert.Contains(t, view, "Sources (3)")
	assert.Contains(t, view, "notes.pdf p.3")
	assert.Contains(t, view, "lec1.mp4 @ 00:12:05")
	assert.Contains(t, view, "0.92")
	// Only the selected passage shows its text.
	assert.Contains(t, view, "Page three text")
	assert.NotContains(t, view, "Lecture segment")
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		expected string
	}{
		{"pdf page", map[string]any{"file_name": "a.pdf", "page_number": 2}, "a.pdf p.2"},
		{"video timestamp", map[string]any{"file_name": "v.mp4", "timestamp": "01:02:03"}, "v.mp4 @ 01:02:03"},
		{"text", map[string]any{"file_name": "text"}, "text"},
		{"missing name", map[string]any{}, "(unknown)"},
		{"nil metadata", nil, "(unknown)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Location(tt.metadata))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("字", 50)
	out := truncate(long, 10)
	assert.Equal(t, 10, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "..."))
}
