package harness

import (
	"errors"
	"fmt"
	"strings"
)

// FairnessSample pairs the measurements of two trials that ran concurrently
// on distinct ports. Immutable once captured.
type FairnessSample struct {
	// Repetition is the 1-based index of the concurrent pair within a run.
	Repetition int

	// A and B are the flow measurements in launch order.
	A, B FlowResult
}

// Ratio is the fairness ratio: the faster flow's throughput over the slower
// flow's. By construction it is always >= 1; 1.0 is perfectly fair.
func (s FairnessSample) Ratio() float64 {
	tpA, tpB := s.A.Throughput(), s.B.Throughput()
	if tpA >= tpB {
		return tpA / tpB
	}
	return tpB / tpA
}

// FairnessError reports one repetition whose ratio fell outside the
// convergence band. It carries the measured value next to the bound so a
// human can judge how far off the SUT is.
type FairnessError struct {
	Repetition int
	Ratio      float64
	Threshold  float64
}

// Error implements the error interface.
func (e *FairnessError) Error() string {
	return fmt.Sprintf("repetition %d: fairness ratio %.4f outside [%.2f, %.2f] (threshold %.2f)",
		e.Repetition, e.Ratio, 1-e.Threshold, 1+e.Threshold, e.Threshold)
}

// Evaluator asserts fairness convergence for one scenario run.
type Evaluator struct {
	// Threshold is θ: a sample passes when 1-θ <= ratio <= 1+θ.
	Threshold float64
}

// Check judges a single sample. It returns a *FairnessError when the ratio
// is out of band, nil otherwise.
func (e Evaluator) Check(s FairnessSample) error {
	ratio := s.Ratio()
	if ratio > 1+e.Threshold || ratio < 1-e.Threshold {
		return &FairnessError{Repetition: s.Repetition, Ratio: ratio, Threshold: e.Threshold}
	}
	return nil
}

// ConvergenceVerdict is the outcome of a full fairness run. Every sample is
// judged independently; a single out-of-band repetition fails the verdict,
// but evaluation never short-circuits, so all violations surface together.
type ConvergenceVerdict struct {
	Scenario   string
	Threshold  float64
	Samples    []FairnessSample
	Violations []*FairnessError
}

// Evaluate judges every collected sample and returns the verdict.
func (e Evaluator) Evaluate(scenario string, samples []FairnessSample) *ConvergenceVerdict {
	v := &ConvergenceVerdict{
		Scenario:  scenario,
		Threshold: e.Threshold,
		Samples:   samples,
	}
	for _, s := range samples {
		var ferr *FairnessError
		if err := e.Check(s); errors.As(err, &ferr) {
			v.Violations = append(v.Violations, ferr)
		}
	}
	return v
}

// Pass reports whether every repetition converged.
func (v *ConvergenceVerdict) Pass() bool {
	return len(v.Violations) == 0
}

// Summary renders a one-line human-readable verdict.
func (v *ConvergenceVerdict) Summary() string {
	if v.Pass() {
		return fmt.Sprintf("%s: %d/%d repetitions within threshold %.2f",
			v.Scenario, len(v.Samples), len(v.Samples), v.Threshold)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d of %d repetitions out of band", v.Scenario, len(v.Violations), len(v.Samples))
	for _, violation := range v.Violations {
		fmt.Fprintf(&b, "\n  %s", violation.Error())
	}
	return b.String()
}
