package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/underwrite-cli/internal/screening"
)

var screeningCmd = &cobra.Command{
	Use:   "screening",
	Short: "Run reputation screening over the deal's entities",
}

// -- screening run --

var screeningRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one screening pass and wait for it to complete",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(cfg, "cli", clockwork.NewRealClock())
		if err != nil {
			return err
		}
		defer env.Close()

		terms, _ := cmd.Flags().GetStringSlice("term")
		return runScreening(ctx, cmd.OutOrStdout(), env.Store, terms)
	},
}

// runScreening adds the custom terms, starts a run and waits for it.
func runScreening(ctx context.Context, out io.Writer, store *screening.Store, terms []string) error {
	for _, t := range terms {
		if _, err := store.AddTerm(t); err != nil {
			return err
		}
	}

	run, _, err := store.StartRun()
	if err != nil {
		return eris.Wrap(err, "screening run")
	}
	_, _ = fmt.Fprintf(out, "Screening run %s started over %d entities\n", run.ID(), len(run.EntityIDs()))

	if err := run.Wait(ctx); err != nil {
		return eris.Wrap(err, "screening run")
	}

	formatRunSummary(out, run, store.Status())
	return nil
}

func formatRunSummary(out io.Writer, run *screening.Run, st screening.Status) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", st.State)
	_, _ = fmt.Fprintf(w, "Entities:\t%d\n", len(run.EntityIDs()))
	_, _ = fmt.Fprintf(w, "Duration:\t%s\n", run.CompletedAt().Sub(run.StartedAt()))
	for i, t := range run.Terms() {
		label := ""
		if i == 0 {
			label = "Terms:"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", label, t)
	}
	_ = w.Flush()
}

func init() {
	screeningRunCmd.Flags().StringSlice("term", nil, "additional search term (repeatable)")

	screeningCmd.AddCommand(screeningRunCmd)
	rootCmd.AddCommand(screeningCmd)
}
