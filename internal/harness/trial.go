package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// StartOrder controls which SUT endpoint is spawned first within a trial.
type StartOrder int

const (
	// OrderSimultaneous starts receiver then sender back to back with no
	// delay. This is the order used for throughput and fairness trials.
	OrderSimultaneous StartOrder = iota

	// OrderSenderFirst starts the sender, waits the settle delay, then
	// starts the receiver.
	OrderSenderFirst

	// OrderReceiverFirst starts the receiver, waits the settle delay, then
	// starts the sender.
	OrderReceiverFirst
)

// String returns the order name used in logs, traces, and the results store.
func (o StartOrder) String() string {
	switch o {
	case OrderSenderFirst:
		return "sender-first"
	case OrderReceiverFirst:
		return "receiver-first"
	default:
		return "simultaneous"
	}
}

// TrialErrorKind categorizes trial failures.
type TrialErrorKind int

const (
	// KindSpawn means an SUT executable could not be started at all.
	KindSpawn TrialErrorKind = iota + 1

	// KindTimeout means the trial's bounded wait expired and both processes
	// were forcibly terminated.
	KindTimeout
)

// String returns the kind name.
func (k TrialErrorKind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// TrialError is returned when a trial could not produce a measurement.
// Verification mismatches and fairness violations are not TrialErrors; they
// are assertion outcomes on completed trials.
type TrialError struct {
	Kind TrialErrorKind
	Role string // "sender" or "receiver"; empty for whole-trial failures
	Port int
	Err  error
}

// Error implements the error interface.
func (e *TrialError) Error() string {
	switch e.Kind {
	case KindSpawn:
		return fmt.Sprintf("%s spawn failed on port %d: %v", e.Role, e.Port, e.Err)
	case KindTimeout:
		return fmt.Sprintf("trial timed out on port %d: %v", e.Port, e.Err)
	default:
		return fmt.Sprintf("trial failed on port %d: %v", e.Port, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *TrialError) Unwrap() error {
	return e.Err
}

// Trial is one execution of a sender/receiver pair: a port, an exclusive
// receive artifact, and a start order. The artifact is truncated before the
// processes spawn so a stale file from a prior failed run can never mask a
// real failure.
type Trial struct {
	Port   int
	Output string
	Order  StartOrder

	// ReceiverOffset, when non-empty, is appended as the receiver's third
	// positional argument. Handshake probes pass "0".
	ReceiverOffset string
}

// Runner spawns and supervises SUT process pairs for one scenario.
//
// RunTrial blocks its calling goroutine until both processes exit; that
// blocking is intentional and local. Concurrent flows each get their own
// goroutine (see Coordinator) and never share an output path.
type Runner struct {
	scenario *Scenario
	commands *CommandSet
	logger   *slog.Logger
}

// NewRunner builds a Runner for a loaded scenario. A nil logger discards
// all harness logging.
func NewRunner(scenario *Scenario, logger *slog.Logger) (*Runner, error) {
	commands, err := NewCommandSet(scenario.SUT)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{scenario: scenario, commands: commands, logger: logger}, nil
}

// Scenario returns the scenario this runner was built for.
func (r *Runner) Scenario() *Scenario {
	return r.scenario
}

// RunTrial executes one sender/receiver pair and returns its FlowResult.
//
// The wall clock runs from immediately before the first spawn to immediately
// after the second process exits, settle delay included for ordered starts.
// Exit codes are logged but do not fail the trial: the SUT contract is
// "exits after transferring", so any joint termination completes the trial.
// The scenario timeout bounds the whole wait; on expiry both processes are
// killed and a TrialError of kind KindTimeout is returned.
func (r *Runner) RunTrial(ctx context.Context, t Trial) (FlowResult, error) {
	size, err := r.scenario.FixtureSize()
	if err != nil {
		return FlowResult{}, err
	}

	if err := resetArtifact(t.Output); err != nil {
		return FlowResult{}, err
	}

	if timeout := time.Duration(r.scenario.Timeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	senderArgv := r.commands.SenderArgv(r.scenario.Host, t.Port, r.scenario.Fixture, size)
	receiverArgv := r.commands.ReceiverArgv(t.Port, t.Output, t.ReceiverOffset)
	settle := time.Duration(r.scenario.SettleDelay)

	r.logger.Debug("starting trial",
		"scenario", r.scenario.Name,
		"port", t.Port,
		"order", t.Order.String(),
		"output", t.Output,
	)

	start := time.Now()

	var sender, receiver *exec.Cmd
	switch t.Order {
	case OrderSenderFirst:
		sender, receiver, err = r.spawnOrdered(ctx, t.Port, "sender", senderArgv, "receiver", receiverArgv, settle)
	case OrderReceiverFirst:
		receiver, sender, err = r.spawnOrdered(ctx, t.Port, "receiver", receiverArgv, "sender", senderArgv, settle)
	default:
		receiver, sender, err = r.spawnOrdered(ctx, t.Port, "receiver", receiverArgv, "sender", senderArgv, 0)
	}
	if err != nil {
		return FlowResult{}, err
	}

	if err := r.awaitBoth(ctx, t.Port, sender, receiver); err != nil {
		return FlowResult{}, err
	}

	result := FlowResult{Duration: time.Since(start), Bytes: size}
	if err := result.Validate(); err != nil {
		return FlowResult{}, err
	}

	r.logger.Debug("trial complete",
		"scenario", r.scenario.Name,
		"port", t.Port,
		"duration", result.Duration,
		"throughput_mbps", result.Mbps(),
	)
	return result, nil
}

// spawnOrdered starts first, sleeps the settle delay, then starts second.
// On any failure the already-running process is killed and reaped.
func (r *Runner) spawnOrdered(ctx context.Context, port int, firstRole string, firstArgv []string, secondRole string, secondArgv []string, settle time.Duration) (*exec.Cmd, *exec.Cmd, error) {
	first, err := r.spawn(ctx, port, firstRole, firstArgv)
	if err != nil {
		return nil, nil, err
	}

	if settle > 0 {
		if err := sleepContext(ctx, settle); err != nil {
			killAndReap(first)
			return nil, nil, &TrialError{Kind: KindTimeout, Port: port, Err: err}
		}
	}

	second, err := r.spawn(ctx, port, secondRole, secondArgv)
	if err != nil {
		killAndReap(first)
		return nil, nil, err
	}

	return first, second, nil
}

// spawn starts one SUT process. The returned command uses CommandContext so
// a trial timeout forcibly terminates it.
func (r *Runner) spawn(ctx context.Context, port int, role string, argv []string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return nil, &TrialError{Kind: KindSpawn, Role: role, Port: port, Err: err}
	}
	r.logger.Debug("spawned", "role", role, "pid", cmd.Process.Pid, "argv", argv)
	return cmd, nil
}

// awaitBoth waits for the pair to exit, in either order. CommandContext has
// already killed both if the context expired; the deadline check afterwards
// turns that into a distinct timeout failure instead of a bogus measurement.
func (r *Runner) awaitBoth(ctx context.Context, port int, sender, receiver *exec.Cmd) error {
	type exit struct {
		role string
		err  error
	}
	exits := make(chan exit, 2)
	go func() { exits <- exit{"sender", sender.Wait()} }()
	go func() { exits <- exit{"receiver", receiver.Wait()} }()

	for i := 0; i < 2; i++ {
		e := <-exits
		if e.err != nil {
			r.logger.Warn("process exited abnormally", "role", e.role, "port", port, "error", e.err)
		} else {
			r.logger.Debug("process exited", "role", e.role, "port", port)
		}
	}

	if err := ctx.Err(); errors.Is(err, context.DeadlineExceeded) {
		return &TrialError{Kind: KindTimeout, Port: port, Err: err}
	} else if err != nil {
		return err
	}
	return nil
}

// resetArtifact truncates (or creates) the receive artifact so the trial
// starts from a provably empty output.
func resetArtifact(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to reset artifact %s: %w", path, err)
	}
	return f.Close()
}

// killAndReap forcibly terminates a process and collects its exit status so
// no zombie outlives the trial.
func killAndReap(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	_ = cmd.Wait()
}

// sleepContext waits d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
