package harness

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FlowResult is the measurement of one completed trial: how long both
// processes took to jointly exit and how many bytes the scenario moved.
// FlowResults are immutable once created.
type FlowResult struct {
	// Duration is the wall clock from first spawn to last exit.
	Duration time.Duration

	// Bytes is the fixture's byte length.
	Bytes int64
}

// Throughput returns the derived byte rate in bytes per second. This is the
// unit fairness ratios are computed in; the ratio cancels units, but every
// sample within one comparison must use the same rate.
func (f FlowResult) Throughput() float64 {
	return float64(f.Bytes) / f.Duration.Seconds()
}

// Mbps returns the derived bit rate in mebibits per second, the unit the
// bandwidth reporter prints.
func (f FlowResult) Mbps() float64 {
	return (8 * float64(f.Bytes) / f.Duration.Seconds()) / (1024 * 1024)
}

// Validate rejects measurements that cannot have come from a real trial.
// A zero or negative duration is a measurement bug, not a fast SUT.
func (f FlowResult) Validate() error {
	if f.Duration <= 0 {
		return fmt.Errorf("non-positive trial duration %v", f.Duration)
	}
	if f.Bytes <= 0 {
		return fmt.Errorf("non-positive transfer size %d", f.Bytes)
	}
	if tp := f.Throughput(); math.IsInf(tp, 0) || math.IsNaN(tp) || tp <= 0 {
		return fmt.Errorf("non-finite throughput from duration %v and size %d", f.Duration, f.Bytes)
	}
	return nil
}

// Sample runs one single-flow trial on the given port with a fresh,
// uniquely named receive artifact, and returns its timing measurement.
// The artifact name carries the scenario, port, and a UUIDv7 suffix so
// concurrent samples can never collide and reruns never inherit stale bytes.
func (r *Runner) Sample(ctx context.Context, port int) (FlowResult, error) {
	trial := Trial{
		Port:   port,
		Output: r.artifactPath(port),
		Order:  OrderSimultaneous,
	}
	return r.RunTrial(ctx, trial)
}

// artifactPath builds a per-trial receive path under the scenario's
// artifact directory.
func (r *Runner) artifactPath(port int) string {
	name := fmt.Sprintf("%s-%d-%s%s",
		r.scenario.Name,
		port,
		uuid.Must(uuid.NewV7()).String(),
		filepath.Ext(r.scenario.Fixture),
	)
	return filepath.Join(r.scenario.ArtifactDir, name)
}
