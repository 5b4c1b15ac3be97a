package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(g *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question and print the answer",
		Long: `Send one question to the answering server and print its answer.

The question is the arguments joined by spaces, or standard input when
no arguments are given. Standard input is sent as read, except that one
trailing newline (as added by echo) is removed. An empty question is sent
as-is.

Examples:
  envask ask "What was the mean surface temperature in July 2023?"
  echo "Forecast rainfall for Lisbon next week" | envask ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read question: %w", err)
				}
				query = strings.TrimSuffix(string(b), "\n")
			}

			s, err := openSession(cfg, "stderr")
			if err != nil {
				return err
			}
			defer s.Close()

			s.form.Edit(query)
			state, outcome := s.form.Submit(cmd.Context())
			if outcome.Err != nil {
				return outcome.Err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"query":       state.Query,
					"answer":      state.Answer,
					"has_answer":  outcome.Result.HasAnswer,
					"status_code": outcome.Result.StatusCode,
				})
			}
			_, err = fmt.Fprintln(out, state.Answer)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
