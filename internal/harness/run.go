package harness

import (
	"context"
	"log/slog"

	"github.com/xferbench/xferbench/internal/testutil"
)

// RunVerifyScenario executes the transfer-exactness check for one scenario:
// a single simultaneous-start trial followed by byte-exact verification.
// Execution errors (spawn failure, timeout) abort this scenario and are
// returned; a verification mismatch is recorded on the Result so sibling
// scenarios keep running.
func RunVerifyScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	runner, err := NewRunner(scenario, logger)
	if err != nil {
		return nil, err
	}

	clock := testutil.NewDeterministicClock()
	result := NewResult()

	report, flow, err := runner.RunVerify(ctx)
	if err != nil {
		return nil, err
	}

	result.AddTrialTrace(scenario.Name, scenario.Ports[0], OrderSimultaneous, 1, flow.Bytes, clock.Next())
	result.AddVerifyTrace(scenario.Name, report, clock.Next())
	if !report.Pass {
		result.AddError("transfer verification failed: " + report.Describe())
	}
	return result, nil
}

// RunHandshakeScenario executes the startup-order probe for one scenario.
// Both legs must independently deliver byte-exact; each leg's trial and
// verification are traced.
func RunHandshakeScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	runner, err := NewRunner(scenario, logger)
	if err != nil {
		return nil, err
	}

	clock := testutil.NewDeterministicClock()
	result := NewResult()

	outcomes, err := runner.ProbeHandshakeOrder(ctx)
	if err != nil {
		return nil, err
	}

	for i, outcome := range outcomes {
		result.AddTrialTrace(scenario.Name, scenario.Ports[0], outcome.Order, i+1, outcome.Result.Bytes, clock.Next())
		result.AddVerifyTrace(scenario.Name, outcome.Report, clock.Next())
		if !outcome.Report.Pass {
			result.AddError(outcome.Order.String() + " leg failed verification: " + outcome.Report.Describe())
		}
	}
	return result, nil
}

// RunFairnessScenario executes the fairness-convergence check for one
// scenario: the configured number of concurrent-pair repetitions, each
// judged independently against the scenario threshold. The verdict is
// returned alongside the traced Result.
func RunFairnessScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, *ConvergenceVerdict, error) {
	runner, err := NewRunner(scenario, logger)
	if err != nil {
		return nil, nil, err
	}

	coordinator := NewCoordinator(runner, logger)
	verdict, err := coordinator.RunFairness(ctx)
	if err != nil {
		return nil, nil, err
	}

	violated := make(map[int]bool, len(verdict.Violations))
	for _, v := range verdict.Violations {
		violated[v.Repetition] = true
	}

	clock := testutil.NewDeterministicClock()
	result := NewResult()
	for _, sample := range verdict.Samples {
		result.AddTrialTrace(scenario.Name, scenario.Ports[0], OrderSimultaneous, sample.Repetition, sample.A.Bytes, clock.Next())
		result.AddTrialTrace(scenario.Name, scenario.Ports[1], OrderSimultaneous, sample.Repetition, sample.B.Bytes, clock.Next())
		result.AddFairnessTrace(scenario.Name, sample.Repetition, !violated[sample.Repetition], clock.Next())
	}
	for _, violation := range verdict.Violations {
		result.AddError(violation.Error())
	}
	return result, verdict, nil
}
