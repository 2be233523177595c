// Package filex contains filesystem helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir returns <user cache dir>/<appName>, creating it if needed.
// When the platform has no cache dir the current working directory is used.
func EnsureDataDir(appName string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
	}

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// CheckSize fails when the file at path is larger than limit bytes.
func CheckSize(path string, limit int64) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > limit {
		return fmt.Errorf("%s is %d bytes, limit is %d: %w", filepath.Base(path), fi.Size(), limit, ErrTooLarge)
	}
	return nil
}
