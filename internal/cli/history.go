package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/RichardoC/envask/internal/db"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		limit int
		prune time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded exchanges from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Journal == "" {
				return errors.New("no journal configured (use --journal or ENVASK_JOURNAL)")
			}

			database, err := db.New(cfg.Journal)
			if err != nil {
				return fmt.Errorf("failed to open journal: %w", err)
			}
			defer database.Close()

			ctx := cmd.Context()
			if prune > 0 {
				n, err := database.Prune(ctx, time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Pruned %d exchanges older than %s\n", n, prune)
			}

			exchanges, err := database.RecentExchanges(ctx, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FINISHED\tSEQ\tSTATUS\tCODE\tQUERY\tANSWER")
			for _, ex := range exchanges {
				answer := ex.Answer
				if ex.Error != "" {
					answer = "error: " + ex.Error
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%s\n",
					ex.FinishedAt.Local().Format(time.DateTime),
					ex.Seq, ex.Status, ex.StatusCode,
					oneLine(ex.Query, 40), oneLine(answer, 60))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of exchanges to show")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete exchanges older than this before listing")
	return cmd
}

// oneLine flattens s onto one line and shortens it to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
