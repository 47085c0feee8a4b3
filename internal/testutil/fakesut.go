package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// FakeSUT is a generated pair of shell scripts that stand in for the real
// sender/receiver executables. The fake receiver does not listen on any
// port; it copies the configured fixture into its output argument after a
// configurable delay, which is enough for the harness to exercise spawning,
// joint-exit timing, artifact handling, and verification without a network.
type FakeSUT struct {
	Sender   string
	Receiver string
}

// FakeSUTConfig shapes the generated scripts.
type FakeSUTConfig struct {
	// Fixture is the file the fake receiver copies to its output path.
	// Required unless WriteNothing or Hang is set.
	Fixture string

	// SenderDelay and ReceiverDelay are how long each process runs before
	// exiting. Zero means exit as fast as the shell allows.
	SenderDelay   time.Duration
	ReceiverDelay time.Duration

	// WriteNothing leaves the receiver's output untouched, simulating an
	// SUT that lost every byte.
	WriteNothing bool

	// Corrupt appends one extra byte after copying, producing a length
	// mismatch.
	Corrupt bool

	// Truncate drops the fixture's last byte while copying, producing a
	// content-complete prefix of the right origin but wrong length.
	Truncate bool

	// Hang makes both processes sleep far past any reasonable trial
	// timeout, for exercising the bounded wait.
	Hang bool

	// SenderExitCode makes the fake sender exit non-zero.
	SenderExitCode int
}

// NewFakeSUT writes the scripts into a test temp directory and returns their
// paths, ready to drop into a scenario's sut block.
func NewFakeSUT(t *testing.T, cfg FakeSUTConfig) FakeSUT {
	t.Helper()

	dir := t.TempDir()
	sut := FakeSUT{
		Sender:   filepath.Join(dir, "fake-sender.sh"),
		Receiver: filepath.Join(dir, "fake-receiver.sh"),
	}

	writeScript(t, sut.Sender, senderScript(cfg))
	writeScript(t, sut.Receiver, receiverScript(cfg))
	return sut
}

// senderScript renders the fake sender: <host> <port> <file> <size>.
func senderScript(cfg FakeSUTConfig) string {
	if cfg.Hang {
		return "#!/bin/sh\nsleep 3600\n"
	}
	script := "#!/bin/sh\n"
	if cfg.SenderDelay > 0 {
		script += fmt.Sprintf("sleep %.3f\n", cfg.SenderDelay.Seconds())
	}
	script += fmt.Sprintf("exit %d\n", cfg.SenderExitCode)
	return script
}

// receiverScript renders the fake receiver: <port> <output> [offset].
func receiverScript(cfg FakeSUTConfig) string {
	if cfg.Hang {
		return "#!/bin/sh\nsleep 3600\n"
	}
	script := "#!/bin/sh\n"
	if cfg.ReceiverDelay > 0 {
		script += fmt.Sprintf("sleep %.3f\n", cfg.ReceiverDelay.Seconds())
	}
	switch {
	case cfg.WriteNothing:
		// Output stays exactly as the harness left it.
	case cfg.Truncate:
		script += fmt.Sprintf("head -c -1 %q > \"$2\"\n", cfg.Fixture)
	case cfg.Corrupt:
		script += fmt.Sprintf("cp %q \"$2\"\nprintf X >> \"$2\"\n", cfg.Fixture)
	default:
		script += fmt.Sprintf("cp %q \"$2\"\n", cfg.Fixture)
	}
	return script
}

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write fake SUT script %s: %v", path, err)
	}
}
