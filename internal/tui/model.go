// Package tui renders the query form in the terminal with Bubbletea.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/runeutil"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RichardoC/envask/internal/form"
)

const (
	heading      = "Env Research Agent"
	editorRows   = 5
	defaultWidth = 80
)

// focus is the control receiving key presses.
type focus int

const (
	focusEditor focus = iota
	focusButton
)

// Model is the Bubbletea model for the form. The query and answer live in the
// shared *form.Form; the model only holds what the terminal needs on top.
type Model struct {
	ctx  context.Context
	form *form.Form

	editor textarea.Model
	san    runeutil.Sanitizer
	focus  focus

	width    int
	height   int
	quitting bool
}

// NewModel creates the form view. ctx is the parent of every submission.
func NewModel(ctx context.Context, f *form.Form) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about the environment..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(defaultWidth)
	ta.SetHeight(editorRows)
	ta.SetValue(f.State().Query)
	ta.Focus()

	return Model{
		ctx:    ctx,
		form:   f,
		editor: ta,
		san:    runeutil.NewSanitizer(),
		focus:  focusEditor,
		width:  defaultWidth,
		height: 24,
	}
}

// Init initializes the model (Bubbletea interface).
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// State exposes the current form values, mainly for tests and the caller
// after the program exits.
func (m Model) State() form.State {
	return m.form.State()
}
