package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xferbench/xferbench/internal/testutil"
)

// fastScenario builds an in-memory scenario wired to a fake SUT, with small
// delays so tests stay quick.
func fastScenario(t *testing.T, sut testutil.FakeSUT, fixture string) *Scenario {
	t.Helper()
	sc := &Scenario{
		Name:        "test-scenario",
		Description: "fake SUT scenario for harness tests",
		Fixture:     fixture,
		SUT:         SUTConfig{Sender: sut.Sender, Receiver: sut.Receiver},
		Host:        "localhost",
		Ports:       []int{19001, 19002},
		Repetitions: 2,
		Threshold:   0.5,
		SettleDelay: Duration(30 * time.Millisecond),
		Timeout:     Duration(10 * time.Second),
		ArtifactDir: t.TempDir(),
	}
	require.NoError(t, validateScenario(sc))
	return sc
}
