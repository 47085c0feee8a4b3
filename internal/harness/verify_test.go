package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xferbench/xferbench/internal/testutil"
)

func TestVerifyTransfer_ByteExact(t *testing.T) {
	sent := testutil.WriteFixture(t, "sent.txt", []byte("hello, world\n"))
	received := testutil.WriteFixture(t, "received.txt", []byte("hello, world\n"))

	report, err := VerifyTransfer(sent, received)
	require.NoError(t, err)
	assert.True(t, report.Pass)
	assert.Equal(t, int64(13), report.SentBytes)
	assert.Equal(t, int64(13), report.ReceivedBytes)
	assert.Equal(t, int64(-1), report.MismatchOffset)
	assert.Equal(t, "byte-exact: 13 bytes sent, 13 bytes received", report.Describe())
}

func TestVerifyTransfer_LengthMismatch(t *testing.T) {
	sent := testutil.WriteFixture(t, "sent.txt", []byte("hello, world\n"))
	received := testutil.WriteFixture(t, "received.txt", []byte("hello"))

	report, err := VerifyTransfer(sent, received)
	require.NoError(t, err)
	assert.False(t, report.Pass)
	assert.Equal(t, int64(-1), report.MismatchOffset)
	assert.Equal(t, "length mismatch: 13 bytes sent, 5 bytes received", report.Describe())
}

func TestVerifyTransfer_ContentMismatch(t *testing.T) {
	sent := testutil.WriteFixture(t, "sent.txt", []byte("hello, world\n"))
	received := testutil.WriteFixture(t, "received.txt", []byte("hello, World\n"))

	report, err := VerifyTransfer(sent, received)
	require.NoError(t, err)
	assert.False(t, report.Pass)
	assert.Equal(t, int64(7), report.MismatchOffset)
	assert.Contains(t, report.Describe(), "content mismatch at offset 7")
}

func TestVerifyTransfer_BinarySafe(t *testing.T) {
	payload := []byte{0x00, 0xFF, 0x7F, 0x00, 0x0A, 0x80}
	sent := testutil.WriteFixture(t, "sent.bin", payload)
	received := testutil.WriteFixture(t, "received.bin", payload)

	report, err := VerifyTransfer(sent, received)
	require.NoError(t, err)
	assert.True(t, report.Pass)
}

func TestVerifyTransfer_UnreadableFileIsAnError(t *testing.T) {
	sent := testutil.WriteFixture(t, "sent.txt", []byte("readable"))

	_, err := VerifyTransfer(sent, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "received")

	_, err = VerifyTransfer(filepath.Join(t.TempDir(), "missing"), sent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sent")
}

func TestRunVerify(t *testing.T) {
	fixture := testutil.WriteFixture(t, "payload.txt", []byte("run verify payload"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{Fixture: fixture})
	sc := fastScenario(t, sut, fixture)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	report, result, err := runner.RunVerify(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Pass)
	assert.Equal(t, int64(len("run verify payload")), report.ReceivedBytes)
	assert.NoError(t, result.Validate())
}

func TestRunVerify_DetectsCorruption(t *testing.T) {
	fixture := testutil.WriteFixture(t, "payload.txt", []byte("to be corrupted"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{Fixture: fixture, Corrupt: true})
	sc := fastScenario(t, sut, fixture)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	report, _, err := runner.RunVerify(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Pass)
	assert.Equal(t, report.SentBytes+1, report.ReceivedBytes)
}

func TestProbeHandshakeOrder(t *testing.T) {
	fixture := testutil.WriteFixture(t, "payload.txt", []byte("order independent"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{Fixture: fixture})
	sc := fastScenario(t, sut, fixture)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	outcomes, err := runner.ProbeHandshakeOrder(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, OrderSenderFirst, outcomes[0].Order)
	assert.Equal(t, OrderReceiverFirst, outcomes[1].Order)
	for _, outcome := range outcomes {
		assert.True(t, outcome.Report.Pass, outcome.Report.Describe())
		assert.NoError(t, outcome.Result.Validate())
	}

	// Each leg wrote its own artifact.
	entries, err := os.ReadDir(sc.ArtifactDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestProbeHandshakeOrder_ReportsFailingLeg(t *testing.T) {
	fixture := testutil.WriteFixture(t, "payload.txt", []byte("will be truncated"))
	sut := testutil.NewFakeSUT(t, testutil.FakeSUTConfig{Fixture: fixture, Truncate: true})
	sc := fastScenario(t, sut, fixture)

	runner, err := NewRunner(sc, nil)
	require.NoError(t, err)

	outcomes, err := runner.ProbeHandshakeOrder(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.False(t, outcome.Report.Pass)
		assert.Equal(t, outcome.Report.SentBytes-1, outcome.Report.ReceivedBytes)
	}
}
