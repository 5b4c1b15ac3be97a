package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model (Bubbletea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 2 {
			m.editor.SetWidth(msg.Width - 2)
		}
		return m, nil

	case answeredMsg:
		// Stale and failed outcomes are dropped inside Apply.
		m.form.Apply(msg.outcome)
		return m, nil
	}

	return m.updateEditor(msg, nil)
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab":
		return m.toggleFocus()

	case "ctrl+s":
		return m.submit()

	case "enter", " ":
		if m.focus == focusButton {
			return m.submit()
		}
	}

	if m.focus != focusEditor {
		return m, nil
	}

	return m.updateEditor(msg, msg.Runes)
}

// updateEditor forwards msg to the editor and folds any change into the query.
func (m Model) updateEditor(msg tea.Msg, typed []rune) (tea.Model, tea.Cmd) {
	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		raw := []rune(m.form.State().Query)
		m.form.Edit(string(splice(m.san, raw, before, after, typed)))
	}
	return m, cmd
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusEditor {
		m.focus = focusButton
		m.editor.Blur()
		return m, nil
	}
	m.focus = focusEditor
	return m, m.editor.Focus()
}

// submit starts a new exchange. Nothing is disabled while it runs; pressing
// Ask again starts another independent one.
func (m Model) submit() (tea.Model, tea.Cmd) {
	sub := m.form.Begin(m.ctx)
	return m, runSubmissionCmd(sub)
}
