package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RichardoC/envask/internal/form"
)

// runSubmissionCmd performs the exchange off the update loop.
func runSubmissionCmd(sub *form.Submission) tea.Cmd {
	return func() tea.Msg {
		return answeredMsg{outcome: sub.Run()}
	}
}
