package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles.
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.NormalBorder())

	activeButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("205")).
				Bold(true)

	answerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			PaddingLeft(1).
			TabWidth(lipgloss.NoTabConversion)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// View renders the UI (Bubbletea interface).
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(headingStyle.Render(heading))
	b.WriteString("\n\n")

	b.WriteString(m.editor.View())
	b.WriteString("\n")

	if m.focus == focusButton {
		b.WriteString(activeButtonStyle.Render("Ask"))
	} else {
		b.WriteString(buttonStyle.Render("Ask"))
	}
	b.WriteString("\n\n")

	// The answer is shown as-is, line breaks included.
	if answer := m.form.State().Answer; answer != "" {
		b.WriteString(answerStyle.Render(answer))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render("\n[tab: switch focus, ctrl+s: ask, esc: quit]"))

	return b.String()
}
