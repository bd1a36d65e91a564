package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"neve/internal/store"
)

// storeDir returns NEVE_STORE_DIR, falling back to a per-user default
// under the invoking user's home directory when unset.
func storeDir() (string, error) {
	if dir := os.Getenv("NEVE_STORE_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve default store dir: %w", err)
	}
	return filepath.Join(home, ".neve", "store"), nil
}

func openStore() (*store.Store, error) {
	dir, err := storeDir()
	if err != nil {
		return nil, internalError(err)
	}
	s, err := store.Open(dir)
	if err != nil {
		return nil, internalError(fmt.Errorf("open store at %s: %w", dir, err))
	}
	return s, nil
}

// buildJobs reads NEVE_BUILD_JOBS, defaulting to one job at a time the
// way internal/builder.Config itself defaults MaxJobs when unset.
func buildJobs() int {
	v := os.Getenv("NEVE_BUILD_JOBS")
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// buildBackend validates NEVE_BUILD_BACKEND. "container" is the only
// backend internal/builder implements today (Linux namespace isolation,
// network access only for fixed-output derivations); "native" is accepted
// as a forward-compatible alias that currently runs the same sandboxed
// path.
func buildBackend() (string, error) {
	v := os.Getenv("NEVE_BUILD_BACKEND")
	switch v {
	case "", "container", "native":
		if v == "" {
			return "container", nil
		}
		return v, nil
	default:
		return "", fmt.Errorf("NEVE_BUILD_BACKEND: unsupported value %q (expected native|container)", v)
	}
}
