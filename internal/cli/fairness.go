package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xferbench/xferbench/internal/harness"
	"github.com/xferbench/xferbench/internal/store"
)

// NewFairnessCommand creates the fairness command: repeated concurrent-pair
// trials judged against the scenario's convergence threshold.
func NewFairnessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fairness <scenarios-dir>",
		Short: "Run fairness-convergence checks",
		Long: `For each scenario, run two concurrent flows on distinct ports and compute
the fairness ratio max(throughput)/min(throughput). Repeat the configured
number of times; every repetition must stay within 1±threshold. A single
out-of-band repetition fails the scenario - repetitions are never averaged.

Exit codes:
  0 - every repetition of every scenario converged
  1 - at least one fairness violation or trial failure
  2 - command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd, "fairness", fairnessScenario)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record run history to this SQLite database")
	return cmd
}

func fairnessScenario(ctx context.Context, opts *CheckOptions, scenario *harness.Scenario, st *store.Store, cmd *cobra.Command) ScenarioOutcome {
	logger := setupLogging(opts.Verbose)
	w := cmd.OutOrStdout()

	var runID string
	if st != nil {
		var err error
		if runID, err = st.BeginRun(ctx, "fairness", scenario.Name); err != nil {
			return ScenarioOutcome{Name: scenario.Name, Pass: false, Errors: []string{err.Error()}}
		}
	}

	result, verdict, err := harness.RunFairnessScenario(ctx, scenario, logger)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n  trial error: %v\n", scenario.Name, err)
		}
		return ScenarioOutcome{Name: scenario.Name, Pass: false, Errors: []string{err.Error()}}
	}

	if st != nil {
		violated := make(map[int]bool, len(verdict.Violations))
		for _, v := range verdict.Violations {
			violated[v.Repetition] = true
		}
		ports := [2]int{scenario.Ports[0], scenario.Ports[1]}
		for _, sample := range verdict.Samples {
			if err := st.RecordSample(ctx, runID, ports, sample, !violated[sample.Repetition]); err != nil {
				result.AddError(fmt.Sprintf("failed to record sample: %v", err))
			}
		}
		if err := st.FinishRun(ctx, runID, result.Pass); err != nil {
			result.AddError(fmt.Sprintf("failed to record run: %v", err))
		}
	}

	if opts.Format != "json" {
		for _, sample := range verdict.Samples {
			fmt.Fprintf(w, "  %s repetition %d: ratio %.4f\n", scenario.Name, sample.Repetition, sample.Ratio())
		}
		if result.Pass {
			fmt.Fprintf(w, "✓ %s\n", verdict.Summary())
		} else {
			fmt.Fprintf(w, "✗ %s\n", verdict.Summary())
		}
	}
	return ScenarioOutcome{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
}
