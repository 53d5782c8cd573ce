package storage

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/manav03panchal/creatorbook/internal/errors"
)

// ErrDiskFull is returned when a file write runs out of space.
var ErrDiskFull = stderrors.New("disk full")

// SafeWrite writes data to path atomically: a temp file in the same
// directory is written, synced and renamed over path. A failed write leaves
// any existing file untouched.
func SafeWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDirectory(dir); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".creatorbook-*.tmp")
	if err != nil {
		return wrapWriteError("create temp file", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return wrapWriteError("write", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return wrapWriteError("sync", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// EnsureDirectory creates a directory with safe permissions if it doesn't exist.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return wrapWriteError("mkdir", err)
	}
	return nil
}

func wrapWriteError(op string, err error) error {
	if isDiskFullError(err) {
		return &errors.SystemError{Message: "disk full", Op: op, Cause: ErrDiskFull}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isDiskFullError(err error) bool {
	return err != nil && stderrors.Is(err, syscall.ENOSPC)
}
