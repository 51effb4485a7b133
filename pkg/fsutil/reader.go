package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File reading operations.

// ReadFileSafe reads a file after verifying it resolves inside the given base
// directory. It guards against path traversal when the file path originates
// from user-provided configuration.
//
// Parameters:
//   - baseDir: The directory the file must live under
//   - path: The file path to read (absolute, or relative to baseDir)
//
// Returns:
//   - []byte: The file contents
//   - error: ErrBasePath, ErrPathOutsideBase, or read error
func ReadFileSafe(baseDir, path string) ([]byte, error) {
	if baseDir == "" {
		return nil, ErrBasePath
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(absBase, resolved)
	}

	resolved = filepath.Clean(resolved)

	relative, err := filepath.Rel(absBase, resolved)
	if err != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", ErrPathOutsideBase, path)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", resolved, err)
	}

	return data, nil
}
