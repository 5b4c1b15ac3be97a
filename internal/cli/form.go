package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RichardoC/envask/internal/tui"
)

func newFormCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Open the interactive query form",
		Long: `Open the query form in the terminal.

Keys:
  tab      switch between the question editor and the Ask button
  ctrl+s   ask (from anywhere)
  enter    ask (when the button is focused)
  esc      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd, g)
		},
	}
}

func runForm(cmd *cobra.Command, g *globalFlags) error {
	cfg, err := g.load(cmd)
	if err != nil {
		return err
	}

	// The form owns the screen, so logs go to --log-file or nowhere.
	s, err := openSession(cfg, "")
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
	}()

	ctx := cmd.Context()
	model := tui.NewModel(ctx, s.form)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		s.logger.Error("Form exited", zap.Error(err))
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
