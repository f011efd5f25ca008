package node

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvCroftDir overrides where croft keeps acquired executables and
	// download scratch space.
	EnvCroftDir = "CROFT_DIR"

	// EnvChiaRoot overrides the wrapped executable's root directory.
	EnvChiaRoot = "CHIA_ROOT"
)

// DefaultCroftDir returns the croft directory path. The CROFT_DIR
// environment variable wins; otherwise ~/.croft.
func DefaultCroftDir() (string, error) {
	if dir := os.Getenv(EnvCroftDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".croft"), nil
}

// DefaultChiaRoot returns the node root directory path. The CHIA_ROOT
// environment variable wins; otherwise ~/.chia/mainnet.
func DefaultChiaRoot() (string, error) {
	if dir := os.Getenv(EnvChiaRoot); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".chia", "mainnet"), nil
}
