package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWithRatio(repetition int, ratio float64) FairnessSample {
	// Equal byte counts; the slower flow takes ratio times longer.
	base := 100 * time.Millisecond
	return FairnessSample{
		Repetition: repetition,
		A:          FlowResult{Duration: base, Bytes: 1000},
		B:          FlowResult{Duration: time.Duration(float64(base) * ratio), Bytes: 1000},
	}
}

func TestFairnessSample_Ratio(t *testing.T) {
	equal := sampleWithRatio(1, 1.0)
	assert.InDelta(t, 1.0, equal.Ratio(), 0.0001)

	skewed := sampleWithRatio(1, 2.0)
	assert.InDelta(t, 2.0, skewed.Ratio(), 0.0001)

	// Ratio is symmetric: it does not matter which flow was slower.
	flipped := FairnessSample{Repetition: 1, A: skewed.B, B: skewed.A}
	assert.InDelta(t, 2.0, flipped.Ratio(), 0.0001)
}

func TestEvaluator_Check(t *testing.T) {
	eval := Evaluator{Threshold: 0.1}

	assert.NoError(t, eval.Check(sampleWithRatio(1, 1.0)))
	assert.NoError(t, eval.Check(sampleWithRatio(1, 1.05)))

	err := eval.Check(sampleWithRatio(3, 1.5))
	require.Error(t, err)

	var ferr *FairnessError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 3, ferr.Repetition)
	assert.InDelta(t, 1.5, ferr.Ratio, 0.0001)
	assert.Contains(t, ferr.Error(), "repetition 3")
	assert.Contains(t, ferr.Error(), "1.5000")
}

func TestEvaluator_Check_NearBand(t *testing.T) {
	eval := Evaluator{Threshold: 0.1}
	assert.NoError(t, eval.Check(sampleWithRatio(1, 1.09)))
	assert.Error(t, eval.Check(sampleWithRatio(1, 1.11)))
}

func TestEvaluate_CollectsEveryViolation(t *testing.T) {
	eval := Evaluator{Threshold: 0.1}
	samples := []FairnessSample{
		sampleWithRatio(1, 1.0),
		sampleWithRatio(2, 1.8),
		sampleWithRatio(3, 1.02),
		sampleWithRatio(4, 2.5),
	}

	verdict := eval.Evaluate("skewed-run", samples)
	assert.False(t, verdict.Pass())
	assert.Equal(t, "skewed-run", verdict.Scenario)
	assert.Len(t, verdict.Samples, 4)

	// Evaluation never short-circuits: both bad repetitions surface.
	require.Len(t, verdict.Violations, 2)
	assert.Equal(t, 2, verdict.Violations[0].Repetition)
	assert.Equal(t, 4, verdict.Violations[1].Repetition)
}

func TestConvergenceVerdict_Summary(t *testing.T) {
	eval := Evaluator{Threshold: 0.1}

	pass := eval.Evaluate("steady", []FairnessSample{
		sampleWithRatio(1, 1.0),
		sampleWithRatio(2, 1.01),
	})
	assert.True(t, pass.Pass())
	assert.Equal(t, "steady: 2/2 repetitions within threshold 0.10", pass.Summary())

	fail := eval.Evaluate("skewed", []FairnessSample{
		sampleWithRatio(1, 1.0),
		sampleWithRatio(2, 3.0),
	})
	assert.False(t, fail.Pass())
	assert.Contains(t, fail.Summary(), "skewed: 1 of 2 repetitions out of band")
	assert.Contains(t, fail.Summary(), "repetition 2")
}
