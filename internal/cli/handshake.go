package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xferbench/xferbench/internal/harness"
	"github.com/xferbench/xferbench/internal/store"
)

// NewHandshakeCommand creates the handshake command: the startup-order
// probe, sender-first and receiver-first with the scenario's settle delay.
func NewHandshakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "handshake <scenarios-dir>",
		Short: "Run startup-order independence probes",
		Long: `Run each scenario twice: sender spawned first, then receiver spawned
first, with the scenario's settle delay between the two starts. Both legs
must independently deliver byte-exact.

The settle delay approximates "started later" without readiness signaling
from the SUT; under heavy load results can be sensitive to that timing
assumption.

Exit codes:
  0 - both orderings byte-exact for every scenario
  1 - at least one leg failed
  2 - command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd, "handshake", handshakeScenario)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record run history to this SQLite database")
	return cmd
}

func handshakeScenario(ctx context.Context, opts *CheckOptions, scenario *harness.Scenario, st *store.Store, cmd *cobra.Command) ScenarioOutcome {
	logger := setupLogging(opts.Verbose)
	w := cmd.OutOrStdout()

	var runID string
	if st != nil {
		var err error
		if runID, err = st.BeginRun(ctx, "handshake", scenario.Name); err != nil {
			return ScenarioOutcome{Name: scenario.Name, Pass: false, Errors: []string{err.Error()}}
		}
	}

	result, err := harness.RunHandshakeScenario(ctx, scenario, logger)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n  trial error: %v\n", scenario.Name, err)
		}
		return ScenarioOutcome{Name: scenario.Name, Pass: false, Errors: []string{err.Error()}}
	}

	if st != nil {
		if err := st.FinishRun(ctx, runID, result.Pass); err != nil {
			result.AddError(fmt.Sprintf("failed to record run: %v", err))
		}
	}

	if opts.Format != "json" {
		if result.Pass {
			fmt.Fprintf(w, "✓ %s (sender-first and receiver-first both byte-exact)\n", scenario.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}
	return ScenarioOutcome{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
}
