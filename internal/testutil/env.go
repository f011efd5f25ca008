// Package testutil provides utilities for testing croft in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points croft at isolated per-test directories. This
// ensures tests never touch:
// - The user's acquired executables under ~/.croft
// - The user's actual node root and its config.yaml
//
// The cleanup is handled by t.TempDir() and t.Setenv, so callers don't
// need to undo anything.
func SetupTestEnv(t *testing.T) {
	t.Helper()

	tmpDir := t.TempDir()

	t.Setenv("CROFT_DIR", filepath.Join(tmpDir, "croft"))
	t.Setenv("CHIA_ROOT", filepath.Join(tmpDir, "mainnet"))

	dirs := []string{
		filepath.Join(tmpDir, "croft"),
		filepath.Join(tmpDir, "mainnet"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
}
