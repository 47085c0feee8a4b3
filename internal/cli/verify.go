package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xferbench/xferbench/internal/harness"
	"github.com/xferbench/xferbench/internal/store"
)

// CheckOptions holds flags shared by the verify, handshake, and fairness
// commands.
type CheckOptions struct {
	*RootOptions
	Filter   string
	Database string
}

// ScenarioOutcome is one scenario's result in command output.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// CheckReport is the overall result of a check command.
type CheckReport struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

func (r *CheckReport) add(outcome ScenarioOutcome) {
	r.Scenarios = append(r.Scenarios, outcome)
	r.Total++
	if outcome.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// byteCountPrinter renders byte counts with thousands separators.
var byteCountPrinter = message.NewPrinter(language.English)

// NewVerifyCommand creates the verify command: one trial per scenario plus
// byte-exact comparison of fixture and receive artifact.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <scenarios-dir>",
		Short: "Run transfer-exactness checks",
		Long: `Run one sender/receiver trial per scenario and verify that the received
bytes equal the sent bytes exactly, independent of file type.

Exit codes:
  0 - every scenario delivered byte-exact
  1 - at least one mismatch or trial failure
  2 - command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd, "verify", verifyScenario)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record run history to this SQLite database")
	return cmd
}

// verifyScenario runs the exactness check for one scenario.
func verifyScenario(ctx context.Context, opts *CheckOptions, scenario *harness.Scenario, st *store.Store, cmd *cobra.Command) ScenarioOutcome {
	logger := setupLogging(opts.Verbose)
	w := cmd.OutOrStdout()

	var runID string
	if st != nil {
		var err error
		if runID, err = st.BeginRun(ctx, "verify", scenario.Name); err != nil {
			return ScenarioOutcome{Name: scenario.Name, Pass: false, Errors: []string{err.Error()}}
		}
	}

	result, err := harness.RunVerifyScenario(ctx, scenario, logger)
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
			size, _ := scenario.FixtureSize()
			byteCountPrinter.Fprintf(w, "✓ %s (%d bytes byte-exact)\n", scenario.Name, size)
		} else {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}
	return ScenarioOutcome{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
}

// runCheck is the shared driver for scenario-directory commands: it loads
// every matching scenario, runs the per-scenario check, and reports. One
// failing scenario never suppresses its siblings.
func runCheck(opts *CheckOptions, dir string, cmd *cobra.Command, kind string, check func(context.Context, *CheckOptions, *harness.Scenario, *store.Store, *cobra.Command) ScenarioOutcome) error {
	if err := requireDir(dir); err != nil {
		return err
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	w := cmd.OutOrStdout()
	if len(files) == 0 {
		if opts.Format == "json" {
			formatter := &OutputFormatter{Format: "json", Writer: w}
			return formatter.Success(CheckReport{Scenarios: []ScenarioOutcome{}})
		}
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history database", err)
		}
		defer st.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report := &CheckReport{Scenarios: make([]ScenarioOutcome, 0, len(files))}
	for _, file := range files {
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			outcome := ScenarioOutcome{
				Name:   filepath.Base(file),
				Pass:   false,
				Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
			}
			if opts.Format != "json" {
				fmt.Fprintf(w, "✗ %s\n  %s\n", outcome.Name, outcome.Errors[0])
			}
			report.add(outcome)
			continue
		}
		report.add(check(ctx, opts, scenario, st, cmd))
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: w}
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "\n%s: %d passed, %d failed (of %d)\n", kind, report.Passed, report.Failed, report.Total)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", report.Failed))
	}
	return nil
}
