package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xferbench/xferbench/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string
}

// NewHistoryCommand creates the history command for querying persisted runs.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs from a history database",
		Long: `List runs recorded with --db by the verify, handshake, and fairness
commands. With --run, show one run's trials and fairness samples.

Examples:
  xferbench history --db ./xferbench.db
  xferbench history --db ./xferbench.db --run 0190d4a1-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show details for one run id")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	if opts.RunID != "" {
		return showRun(ctx, st, opts, w)
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: w}
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}
	for _, run := range runs {
		verdict := "running"
		if run.Pass != nil {
			if *run.Pass {
				verdict = "pass"
			} else {
				verdict = "FAIL"
			}
		}
		fmt.Fprintf(w, "%s  %-9s %-20s %s  %s\n", run.ID, run.Kind, run.Scenario, run.StartedAt, verdict)
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, opts *HistoryOptions, w io.Writer) error {
	trials, err := st.Trials(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trials", err)
	}
	samples, err := st.Samples(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read samples", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: w}
		return formatter.Success(map[string]interface{}{
			"run_id":  opts.RunID,
			"trials":  trials,
			"samples": samples,
		})
	}

	fmt.Fprintf(w, "run %s\n", opts.RunID)
	for _, t := range trials {
		fmt.Fprintf(w, "  trial rep=%d port=%d order=%s duration=%s bytes=%d\n",
			t.Repetition, t.Port, t.StartOrder, t.Duration, t.Bytes)
	}
	for _, s := range samples {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s fairness rep=%d ratio=%.4f\n", mark, s.Repetition, s.Ratio)
	}
	return nil
}
