package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// findScenarioFiles finds YAML scenario files under dir, optionally filtered
// by a glob pattern matched against the base name without extension.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// requireDir returns an ExitCommandError when the path is not a directory.
func requireDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("directory not found: %s", path))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to stat directory", err)
	}
	if !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("not a directory: %s", path))
	}
	return nil
}
