package harness

import (
	"fmt"
	"strconv"

	"github.com/google/shlex"
)

// CommandSet turns a scenario's SUT command lines into concrete argv slices.
// The configured command lines are shell-style prefixes; the harness appends
// the positional arguments the SUT contract defines:
//
//	sender   <host> <port> <fixturePath> <fileSizeBytes>
//	receiver <port> <outputPath> [initialOffset]
type CommandSet struct {
	sender   []string
	receiver []string
}

// NewCommandSet parses the sender and receiver command lines.
func NewCommandSet(sut SUTConfig) (*CommandSet, error) {
	sender, err := shlex.Split(sut.Sender)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sender command %q: %w", sut.Sender, err)
	}
	if len(sender) == 0 {
		return nil, fmt.Errorf("sender command is empty")
	}

	receiver, err := shlex.Split(sut.Receiver)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receiver command %q: %w", sut.Receiver, err)
	}
	if len(receiver) == 0 {
		return nil, fmt.Errorf("receiver command is empty")
	}

	return &CommandSet{sender: sender, receiver: receiver}, nil
}

// SenderArgv builds the full sender invocation for one trial.
func (c *CommandSet) SenderArgv(host string, port int, fixture string, size int64) []string {
	argv := make([]string, 0, len(c.sender)+4)
	argv = append(argv, c.sender...)
	return append(argv, host, strconv.Itoa(port), fixture, strconv.FormatInt(size, 10))
}

// ReceiverArgv builds the full receiver invocation for one trial. offset is
// appended only when non-empty; single-trial and fairness runs omit it,
// handshake probes pass "0".
func (c *CommandSet) ReceiverArgv(port int, output, offset string) []string {
	argv := make([]string, 0, len(c.receiver)+3)
	argv = append(argv, c.receiver...)
	argv = append(argv, strconv.Itoa(port), output)
	if offset != "" {
		argv = append(argv, offset)
	}
	return argv
}
