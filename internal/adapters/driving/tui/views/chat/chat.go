// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// maxTurns is how many past exchanges stay on screen.
const maxTurns = 3

// Turn is one question and its outcome.
type Turn struct {
	Question string
	Answer   string
	Err      error
}

// View holds the question input, the conversation so far, and the sources of
// the latest answer.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	sources   *list.SourceList
	statusbar *status.Bar

	answerService driving.AnswerService
	indexService  driving.IndexService
	ctx           context.Context
	topK          int

	turns      []Turn
	width      int
	height     int
	ready      bool
	pending    bool
	focusInput bool // true = typing a question, false = browsing sources
}

// NewView creates a new chat view. indexService is optional and only feeds
// the status bar; topK 0 uses the service default.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answerService driving.AnswerService,
	indexService driving.IndexService,
	topK int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		sources:       list.NewSourceList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		indexService:  indexService,
		ctx:           context.Background(),
		topK:          topK,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads the index status.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadIndexStatus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		return v, v.handleAnswerCompleted(msg)

	case messages.IndexStatusLoaded:
		if msg.Err == nil {
			v.statusbar.SetIndexStatus(msg.Status)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuestion), msg.Type == tea.KeyEsc:
		v.focusInput = true
		v.input.SetValue("")
		v.statusbar.Clear()
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	}

	v.sources, _ = v.sources.Update(msg)
	return v, nil
}

// submit sends the typed question unless it is blank or one is in flight.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return nil
	}

	v.pending = true
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.input.Blur()
	return v.ask(messages.QuestionSubmitted{Question: question, TopK: v.topK})
}

func (v *View) ask(req messages.QuestionSubmitted) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		result, err := v.answerService.Answer(v.ctx, req.Question, req.TopK)
		return messages.AnswerCompleted{Question: req.Question, Result: result, Err: err}
	}
}

func (v *View) loadIndexStatus() tea.Cmd {
	if v.indexService == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := v.indexService.Status(v.ctx)
		return messages.IndexStatusLoaded{Status: st, Err: err}
	}
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) tea.Cmd {
	v.pending = false
	turn := Turn{Question: msg.Question, Err: msg.Err}

	switch {
	case msg.Err != nil:
		v.sources.SetSources(nil)
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(Describe(msg.Err))
		v.focusInput = true
		v.input.SetValue("")
		v.appendTurn(turn)
		return v.input.Focus()

	case len(msg.Result.Sources) == 0:
		turn.Answer = msg.Result.Answer
		v.sources.SetSources(nil)
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("No matching passages")
		v.focusInput = true
		v.input.SetValue("")
		v.appendTurn(turn)
		return v.input.Focus()
	}

	turn.Answer = msg.Result.Answer
	v.appendTurn(turn)
	v.sources.SetSources(msg.Result.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetMessage("")
	v.focusInput = false
	v.input.Blur()
	return v.loadIndexStatus()
}

func (v *View) appendTurn(turn Turn) {
	v.turns = append(v.turns, turn)
	if len(v.turns) > maxTurns {
		v.turns = v.turns[len(v.turns)-maxTurns:]
	}
}

// Describe turns an answer error into a message for the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return "Nothing has been ingested yet. Run 'lectern ingest' first."
	case errors.Is(err, domain.ErrEmbeddingMismatch):
		return "The index was built with another embedding model. Run 'lectern index reset' and re-ingest."
	case errors.Is(err, domain.ErrEmbedding):
		return "Embedding failed: " + err.Error()
	case errors.Is(err, domain.ErrGeneration):
		return "Generation failed: " + err.Error()
	default:
		return err.Error()
	}
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("Lectern"), "")

	if t := v.renderTurns(); t != "" {
		sections = append(sections, t, "")
	}

	if !v.focusInput && v.sources.Count() > 0 {
		sections = append(sections, v.sources.View(), "")
	}

	sections = append(sections, v.input.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTurns() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about the material you have ingested.")
	}

	answerStyle := v.styles.Answer.Width(v.width - 2)
	blocks := make([]string, 0, len(v.turns)*2)
	for _, turn := range v.turns {
		blocks = append(blocks, v.styles.Question.Render("? "+turn.Question))
		switch {
		case turn.Err != nil:
			blocks = append(blocks, v.styles.Error.PaddingLeft(2).Render(Describe(turn.Err)))
		case turn.Answer != "":
			blocks = append(blocks, answerStyle.Render(turn.Answer))
		}
	}
	return strings.Join(blocks, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.sources.SetDimensions(width, height/2)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Turns returns the exchanges currently on screen.
func (v *View) Turns() []Turn {
	return v.turns
}

// Sources returns the sources of the latest answer.
func (v *View) Sources() []domain.AnswerSource {
	return v.sources.Sources()
}

// SelectedSource returns the highlighted source, or nil.
func (v *View) SelectedSource() *domain.AnswerSource {
	return v.sources.SelectedSource()
}

// Pending reports whether a question is being answered.
func (v *View) Pending() bool {
	return v.pending
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Reset clears the conversation and returns focus to the input.
func (v *View) Reset() {
	v.turns = nil
	v.pending = false
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.sources.SetSources(nil)
	v.statusbar.Clear()
}
