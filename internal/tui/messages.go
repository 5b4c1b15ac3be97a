package tui

import "github.com/RichardoC/envask/internal/form"

// answeredMsg carries a finished submission back to the update loop.
type answeredMsg struct {
	outcome form.Outcome
}
