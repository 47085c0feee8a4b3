package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xferbench/xferbench/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Filter string
}

// ValidationResult reports one scenario file's validation outcome.
type ValidationResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without running trials",
		Long: `Validate scenario YAML files against the embedded CUE schema and the
harness's semantic checks (fixture existence, distinct ports, threshold
bounds). No SUT processes are spawned.

Exit codes:
  0 - all scenario files valid
  1 - one or more files invalid
  2 - command error (directory missing, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	if err := requireDir(dir); err != nil {
		return err
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	w := cmd.OutOrStdout()
	results := make([]ValidationResult, 0, len(files))
	invalid := 0

	for _, file := range files {
		res := ValidationResult{File: filepath.Base(file), Valid: true}
		if _, err := harness.LoadScenario(file); err != nil {
			res.Valid = false
			res.Error = err.Error()
			invalid++
		}
		results = append(results, res)

		if opts.Format != "json" {
			if res.Valid {
				fmt.Fprintf(w, "✓ %s\n", res.File)
			} else {
				fmt.Fprintf(w, "✗ %s\n  %s\n", res.File, res.Error)
			}
		}
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: w}
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "\n%d valid, %d invalid (of %d)\n", len(files)-invalid, invalid, len(files))
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario file(s)", invalid))
	}
	return nil
}
