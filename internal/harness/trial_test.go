package harness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xferbench/xferbench/internal/testutil"
)

func TestRunTrial_Simultaneous(t *testing.T) {
	fixture := testutil.WriteFixture(t, "sample.txt", []byte("hello, transfer"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{
		Fixture:       fixture,
		SenderDelay:   20 * time.Millisecond,
		ReceiverDelay: 20 * time.Millisecond,
	})
	sc := fastScenario(t, sut, fixture)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	output := filepath.Join(t.TempDir(), "received.txt")
	result, err := runner.RunTrial(context.Background(), Trial{
		Port:   sc.Ports[0],
		Output: output,
		Order:  OrderSimultaneous,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len("hello, transfer")), result.Bytes)
	assert.Greater(t, result.Duration, time.Duration(0))

	received, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello, transfer"), received)
}

func TestRunTrial_TruncatesStaleArtifact(t *testing.T) {
	fixture := testutil.WriteFixture(t, "sample.txt", []byte("fresh"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{
		Fixture:      fixture,
		WriteNothing: true,
	})
	sc := fastScenario(t, sut, fixture)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	// A stale artifact from a prior failed run must not survive into the
	// next trial.
	output := filepath.Join(t.TempDir(), "received.txt")
	require.NoError(t, os.WriteFile(output, []byte("stale bytes from last run"), 0o644))

	_, err = runner.RunTrial(context.Background(), Trial{Port: sc.Ports[0], Output: output})
	require.NoError(t, err)

	received, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Empty(t, received)
}

func TestRunTrial_SpawnFailure(t *testing.T) {
	fixture := testutil.WriteFixture(t, "sample.txt", []byte("x"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{Fixture: fixture})
	sc := fastScenario(t, sut, fixture)
	sc.SUT.Sender = filepath.Join(t.TempDir(), "no-such-sender")

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	_, err = runner.RunTrial(context.Background(), Trial{
		Port:   sc.Ports[0],
		Output: filepath.Join(t.TempDir(), "out"),
	})
	require.Error(t, err)

	var trialErr *TrialError
	require.ErrorAs(t, err, &trialErr)
	assert.Equal(t, KindSpawn, trialErr.Kind)
	assert.Equal(t, "sender", trialErr.Role)
	assert.Equal(t, sc.Ports[0], trialErr.Port)
}

func TestRunTrial_Timeout(t *testing.T) {
	fixture := testutil.WriteFixture(t, "sample.txt", []byte("x"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{Fixture: fixture, Hang: true})
	sc := fastScenario(t, sut, fixture)
	sc.Timeout = Duration(150 * time.Millisecond)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = runner.RunTrial(context.Background(), Trial{
		Port:   sc.Ports[0],
		Output: filepath.Join(t.TempDir(), "out"),
	})
	elapsed := time.Since(start)

	var trialErr *TrialError
	require.ErrorAs(t, err, &trialErr)
	assert.Equal(t, KindTimeout, trialErr.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// The bounded wait must actually bound: far below the fake SUT's hang.
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRunTrial_OrderedStartsIncludeSettleDelay(t *testing.T) {
	fixture := testutil.WriteFixture(t, "sample.txt", []byte("ordered"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{Fixture: fixture})
	sc := fastScenario(t, sut, fixture)
	sc.SettleDelay = Duration(80 * time.Millisecond)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	for _, order := range []StartOrder{OrderSenderFirst, OrderReceiverFirst} {
		output := filepath.Join(t.TempDir(), "out-"+order.String())
		result, err := runner.RunTrial(context.Background(), Trial{
			Port:           sc.Ports[0],
			Output:         output,
			Order:          order,
			ReceiverOffset: "0",
		})
		require.NoError(t, err, "order %s", order)

		// Settle delay is inside the measured window for ordered starts.
		assert.GreaterOrEqual(t, result.Duration, 80*time.Millisecond, "order %s", order)

		received, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, []byte("ordered"), received)
	}
}

func TestStartOrder_String(t *testing.T) {
	assert.Equal(t, "simultaneous", OrderSimultaneous.String())
	assert.Equal(t, "sender-first", OrderSenderFirst.String())
	assert.Equal(t, "receiver-first", OrderReceiverFirst.String())
}

func TestTrialError_Messages(t *testing.T) {
	spawn := &TrialError{Kind: KindSpawn, Role: "receiver", Port: 12345, Err: errors.New("no such file")}
	assert.Contains(t, spawn.Error(), "receiver spawn failed on port 12345")

	timeout := &TrialError{Kind: KindTimeout, Port: 12346, Err: context.DeadlineExceeded}
	assert.Contains(t, timeout.Error(), "timed out on port 12346")
}
