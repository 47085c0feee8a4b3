package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xferbench/xferbench/internal/testutil"
)

// scenarioDir writes a fixture, a fake SUT, and one scenario YAML file into a
// temp directory, and returns the directory holding the scenario.
func scenarioDir(t *testing.T, name string, sutCfg testutil.FakeSUTConfig, extraYAML string) string {
	t.Helper()

	dir := t.TempDir()
	fixture := filepath.Join(dir, "payload.txt")
	require.NoError(t, os.WriteFile(fixture, []byte("command level payload"), 0o644))

	sutCfg.Fixture = fixture
	sut := testutil.NewFakeSUT(t, sutCfg)

	doc := fmt.Sprintf(`name: %s
description: command level test scenario
fixture: payload.txt
sut:
  sender: %q
  receiver: %q
ports: [19101, 19102]
repetitions: 2
threshold: 0.5
settle_delay: 30ms
timeout: 10s
artifact_dir: artifacts
%s`, name, sut.Sender, sut.Receiver, extraYAML)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(doc), 0o644))
	return dir
}

// runCommand executes the CLI with the given args and returns combined
// output plus the returned error.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// slowPair makes fake SUT processes whose runtime is dominated by a fixed
// sleep, keeping fairness ratios stable.
func slowPair(d time.Duration) testutil.FakeSUTConfig {
	return testutil.FakeSUTConfig{SenderDelay: d, ReceiverDelay: d}
}
