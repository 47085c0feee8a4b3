package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFakeSUT_ScriptsAreExecutable(t *testing.T) {
	fixture := WriteFixture(t, "payload.txt", []byte("payload"))
	sut := NewFakeSUT(t, FakeSUTConfig{Fixture: fixture})

	for _, path := range []string{sut.Sender, sut.Receiver} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&0o111, "%s is not executable", path)
	}
}

func TestFakeReceiver_CopiesFixture(t *testing.T) {
	fixture := WriteFixture(t, "payload.txt", []byte("exact bytes"))
	sut := NewFakeSUT(t, FakeSUTConfig{Fixture: fixture})
	output := filepath.Join(t.TempDir(), "received.txt")

	require.NoError(t, exec.Command(sut.Receiver, "12345", output).Run())

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("exact bytes"), got)
}

func TestFakeReceiver_Corrupt(t *testing.T) {
	fixture := WriteFixture(t, "payload.txt", []byte("exact bytes"))
	sut := NewFakeSUT(t, FakeSUTConfig{Fixture: fixture, Corrupt: true})
	output := filepath.Join(t.TempDir(), "received.txt")

	require.NoError(t, exec.Command(sut.Receiver, "12345", output).Run())

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("exact bytesX"), got)
}

func TestFakeReceiver_Truncate(t *testing.T) {
	fixture := WriteFixture(t, "payload.txt", []byte("exact bytes"))
	sut := NewFakeSUT(t, FakeSUTConfig{Fixture: fixture, Truncate: true})
	output := filepath.Join(t.TempDir(), "received.txt")

	require.NoError(t, exec.Command(sut.Receiver, "12345", output).Run())

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("exact byte"), got)
}

func TestFakeReceiver_WriteNothing(t *testing.T) {
	fixture := WriteFixture(t, "payload.txt", []byte("exact bytes"))
	sut := NewFakeSUT(t, FakeSUTConfig{Fixture: fixture, WriteNothing: true})
	output := filepath.Join(t.TempDir(), "received.txt")

	require.NoError(t, exec.Command(sut.Receiver, "12345", output).Run())

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestFakeSender_ExitCode(t *testing.T) {
	fixture := WriteFixture(t, "payload.txt", []byte("payload"))
	sut := NewFakeSUT(t, FakeSUTConfig{Fixture: fixture, SenderExitCode: 3})

	err := exec.Command(sut.Sender, "localhost", "12345", fixture, "7").Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}
