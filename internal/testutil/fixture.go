package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFixture writes a scenario input file into a test temp directory and
// returns its path.
func WriteFixture(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// WriteScenario writes a scenario YAML document into a test temp directory
// and returns its path.
func WriteScenario(t *testing.T, name, yamlDoc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("failed to write scenario %s: %v", path, err)
	}
	return path
}
