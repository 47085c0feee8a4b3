package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xferbench/xferbench/internal/harness"
)

// BandwidthOptions holds flags for the bandwidth command.
type BandwidthOptions struct {
	*RootOptions

	// Samples bounds how many readings to print; 0 means run until
	// interrupted.
	Samples int
}

// NewBandwidthCommand creates the bandwidth command: a continuous single-flow
// diagnostic that prints one reading per completed trial. It asserts
// nothing; it exists for watching sustained throughput by eye.
func NewBandwidthCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BandwidthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bandwidth <scenario.yaml>",
		Short: "Continuously report single-flow bandwidth",
		Long: `Run single-flow trials back to back against one scenario and print a
bandwidth reading per trial. The stream runs until interrupted (Ctrl-C)
or, with --samples, until the requested number of readings.

Example:
  xferbench bandwidth ./scenarios/audio-large.yaml
  xferbench bandwidth ./scenarios/audio-large.yaml --samples 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBandwidth(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Samples, "samples", 0, "stop after this many readings (0 = run until interrupted)")
	return cmd
}

func runBandwidth(opts *BandwidthOptions, scenarioFile string, cmd *cobra.Command) error {
	logger := setupLogging(opts.Verbose)

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runner, err := harness.NewRunner(scenario, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build runner", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping bandwidth stream", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	w := cmd.OutOrStdout()
	count := 0
	for sample := range runner.StreamBandwidth(ctx, scenario.Ports[0]) {
		fmt.Fprintf(w, "Bandwidth usage over %.10f seconds: %.2f Mbps\n",
			sample.Duration.Seconds(), sample.Mbps)
		count++
		if opts.Samples > 0 && count >= opts.Samples {
			cancel()
			break
		}
	}

	if count == 0 {
		return NewExitError(ExitFailure, "no bandwidth samples collected")
	}
	return nil
}
