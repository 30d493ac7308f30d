// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lectern/internal/core/domain"
)

// SourceList displays the passages an answer was grounded on.
type SourceList struct {
	sources  []domain.AnswerSource
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the source list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the source list. The selected passage is shown in full,
// the others as a single truncated line.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.sources)+3)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))), "")

	for i := range l.sources {
		lines = append(lines, l.renderSource(i, &l.sources[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *SourceList) renderSource(index int, src *domain.AnswerSource) string {
	label := fmt.Sprintf("[%d] %s", index+1, Location(src.Metadata))
	score := fmt.Sprintf("%.2f", src.Score)

	if index != l.selected {
		return l.styles.Normal.Render("  "+label+"  ") + l.styles.Muted.Render(score)
	}

	header := l.styles.Selected.Render("> " + label + "  " + score)
	body := truncate(strings.Join(strings.Fields(src.Text), " "), l.previewLimit())
	return header + "\n" + l.styles.Muted.Render("    "+body)
}

// previewLimit bounds the selected passage preview to the available space.
func (l *SourceList) previewLimit() int {
	rows := l.height - len(l.sources) - 3
	if rows < 1 {
		rows = 1
	}
	limit := rows * (l.width - 4)
	if limit < 40 {
		limit = 40
	}
	return limit
}

// Location describes where a passage came from, e.g. "notes.pdf p.3" or
// "lecture1.mp4 @ 00:12:05".
func Location(metadata map[string]any) string {
	name, _ := metadata["file_name"].(string)
	if name == "" {
		name = "(unknown)"
	}
	if page, ok := metadata["page_number"]; ok {
		return fmt.Sprintf("%s p.%v", name, page)
	}
	if ts, ok := metadata["timestamp"].(string); ok && ts != "" {
		return fmt.Sprintf("%s @ %s", name, ts)
	}
	return name
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// SetSources replaces the list contents and resets the selection.
func (l *SourceList) SetSources(sources []domain.AnswerSource) {
	l.sources = sources
	l.selected = 0
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.AnswerSource {
	return l.sources
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedSource returns the currently selected source, or nil if none.
func (l *SourceList) SelectedSource() *domain.AnswerSource {
	if l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}
