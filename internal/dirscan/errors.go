package dirscan

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound is returned when the scan root does not exist.
	ErrNotFound = errors.New("directory not found")
	// ErrNotADirectory is returned when the scan root is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrPermissionDenied is returned when the scan root cannot be listed.
	ErrPermissionDenied = errors.New("permission denied")
)

// ScanError is a non-fatal failure recorded for a single entry.
type ScanError struct {
	// Path is the offending path.
	Path string `json:"path" yaml:"path"`
	// Reason describes the failure.
	Reason string `json:"reason" yaml:"reason"`
}

// Error implements the error interface.
func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// rootError maps a failure on the scan root to one of the fatal sentinels.
func rootError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %q: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %q: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("accessing path %q: %w", path, err)
	}
}

// reason extracts a short description from err, dropping the path that
// fs.PathError repeats.
func reason(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}

	return err.Error()
}
