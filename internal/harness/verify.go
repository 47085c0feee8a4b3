package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
)

// VerifyReport is the outcome of comparing sent and received bytes. The
// comparison is binary-safe and exact: equal length and equal content, never
// decoded as text, no partial or fuzzy matching.
type VerifyReport struct {
	Pass          bool
	SentBytes     int64
	ReceivedBytes int64

	// MismatchOffset is the first differing byte offset when lengths match
	// but content does not; -1 otherwise.
	MismatchOffset int64
}

// Describe renders the report for humans, always including both byte counts
// so a failing run shows how far off the SUT is.
func (r *VerifyReport) Describe() string {
	if r.Pass {
		return fmt.Sprintf("byte-exact: %d bytes sent, %d bytes received", r.SentBytes, r.ReceivedBytes)
	}
	if r.SentBytes != r.ReceivedBytes {
		return fmt.Sprintf("length mismatch: %d bytes sent, %d bytes received", r.SentBytes, r.ReceivedBytes)
	}
	return fmt.Sprintf("content mismatch at offset %d: %d bytes sent, %d bytes received",
		r.MismatchOffset, r.SentBytes, r.ReceivedBytes)
}

// VerifyTransfer compares the fixture with a trial's receive artifact.
// It returns an error only when either file cannot be read; a mismatch is a
// report, not an error, so sibling scenarios keep running.
func VerifyTransfer(sentPath, receivedPath string) (*VerifyReport, error) {
	sent, err := os.ReadFile(sentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sent file: %w", err)
	}
	received, err := os.ReadFile(receivedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read received file: %w", err)
	}

	report := &VerifyReport{
		SentBytes:      int64(len(sent)),
		ReceivedBytes:  int64(len(received)),
		MismatchOffset: -1,
	}
	if len(sent) != len(received) {
		return report, nil
	}
	if !bytes.Equal(sent, received) {
		report.MismatchOffset = firstMismatch(sent, received)
		return report, nil
	}
	report.Pass = true
	return report, nil
}

func firstMismatch(a, b []byte) int64 {
	for i := range a {
		if a[i] != b[i] {
			return int64(i)
		}
	}
	return -1
}

// RunVerify executes one simultaneous-start trial and verifies byte-exact
// delivery. It is the transfer-exactness check in its plain form.
func (r *Runner) RunVerify(ctx context.Context) (*VerifyReport, FlowResult, error) {
	port := r.scenario.Ports[0]
	trial := Trial{Port: port, Output: r.artifactPath(port), Order: OrderSimultaneous}

	result, err := r.RunTrial(ctx, trial)
	if err != nil {
		return nil, FlowResult{}, err
	}
	report, err := VerifyTransfer(r.scenario.Fixture, trial.Output)
	if err != nil {
		return nil, FlowResult{}, err
	}
	return report, result, nil
}

// ProbeOutcome is one leg of the handshake-order probe.
type ProbeOutcome struct {
	Order  StartOrder
	Report *VerifyReport
	Result FlowResult
}

// ProbeHandshakeOrder validates that the SUT does not assume a fixed startup
// order: the same scenario runs sender-first and then receiver-first, with
// the scenario's settle delay between the two spawns of each leg, and each
// leg must independently deliver byte-exact.
//
// Each leg gets a fresh receive artifact, which RunTrial truncates before
// spawning, so residual content from the other leg (or a prior failed run)
// cannot produce a false verdict. The settle delay remains a timing
// assumption rather than a readiness handshake; see the package
// documentation for the limitation.
func (r *Runner) ProbeHandshakeOrder(ctx context.Context) ([]ProbeOutcome, error) {
	port := r.scenario.Ports[0]
	outcomes := make([]ProbeOutcome, 0, 2)

	for _, order := range []StartOrder{OrderSenderFirst, OrderReceiverFirst} {
		trial := Trial{
			Port:           port,
			Output:         r.artifactPath(port),
			Order:          order,
			ReceiverOffset: "0",
		}
		result, err := r.RunTrial(ctx, trial)
		if err != nil {
			return outcomes, fmt.Errorf("%s leg: %w", order, err)
		}
		report, err := VerifyTransfer(r.scenario.Fixture, trial.Output)
		if err != nil {
			return outcomes, fmt.Errorf("%s leg: %w", order, err)
		}
		outcomes = append(outcomes, ProbeOutcome{Order: order, Report: report, Result: result})
	}

	return outcomes, nil
}
