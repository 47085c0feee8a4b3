package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Coordinator runs pairs of trials concurrently and repeats them, turning a
// scenario into the fairness samples the Evaluator judges.
type Coordinator struct {
	runner *Runner
	logger *slog.Logger
}

// NewCoordinator wraps a runner. A nil logger discards logging.
func NewCoordinator(runner *Runner, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{runner: runner, logger: logger}
}

// RunConcurrentPair launches two single-flow samples at the same time, one
// per port, each on its own goroutine with its own receive artifact, and
// waits for both measurements.
//
// The two flows are started back to back with no synchronization barrier;
// genuine simultaneity is not guaranteed, and that residual start skew is an
// accepted source of measurement noise. Results arrive over one thread-safe
// queue in whatever order the flows finish and are re-attributed to their
// flow by launch index.
func (c *Coordinator) RunConcurrentPair(ctx context.Context, repetition int) (FairnessSample, error) {
	ports := c.runner.Scenario().Ports
	queue := newOutcomeQueue()
	defer queue.Close()

	for i, port := range ports {
		go func(flow, port int) {
			result, err := c.runner.Sample(ctx, port)
			queue.Enqueue(flowOutcome{flow: flow, result: result, err: err})
		}(i, port)
	}

	var results [2]FlowResult
	collected := 0
	for collected < len(ports) {
		o, ok := queue.TryDequeue()
		if !ok {
			select {
			case <-ctx.Done():
				return FairnessSample{}, ctx.Err()
			case <-queue.Wait():
			}
			continue
		}
		if o.err != nil {
			return FairnessSample{}, fmt.Errorf("flow %d (port %d): %w", o.flow, ports[o.flow], o.err)
		}
		results[o.flow] = o.result
		collected++
	}

	sample := FairnessSample{Repetition: repetition, A: results[0], B: results[1]}
	c.logger.Debug("concurrent pair complete",
		"scenario", c.runner.Scenario().Name,
		"repetition", repetition,
		"duration_a", sample.A.Duration,
		"duration_b", sample.B.Duration,
		"ratio", sample.Ratio(),
	)
	return sample, nil
}

// CollectSamples runs the scenario's configured number of repetitions and
// returns every captured sample. Trials within a repetition run
// concurrently; repetitions run back to back so they stay independent.
func (c *Coordinator) CollectSamples(ctx context.Context) ([]FairnessSample, error) {
	reps := c.runner.Scenario().Repetitions
	samples := make([]FairnessSample, 0, reps)
	for rep := 1; rep <= reps; rep++ {
		sample, err := c.RunConcurrentPair(ctx, rep)
		if err != nil {
			return samples, fmt.Errorf("repetition %d: %w", rep, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// RunFairness collects all samples and evaluates convergence with the
// scenario's threshold.
func (c *Coordinator) RunFairness(ctx context.Context) (*ConvergenceVerdict, error) {
	samples, err := c.CollectSamples(ctx)
	if err != nil {
		return nil, err
	}
	eval := Evaluator{Threshold: c.runner.Scenario().Threshold}
	return eval.Evaluate(c.runner.Scenario().Name, samples), nil
}
