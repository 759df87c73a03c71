// Package filex contains small filesystem helpers used for preview
// materialization and downloads.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir (and parents) when missing and returns its absolute
// path. An empty dir resolves to a subdirectory "name" of the working
// directory.
func EnsureDir(dir, name string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, name)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// SafeName reduces a client-suggested filename to a single path element.
// Empty, "." and ".." become fallback.
func SafeName(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	switch base {
	case "", ".", "..", "/":
		return fallback
	}
	return base
}

// WriteFile streams r into dir/name, going through a temporary file so a
// failed copy never leaves a truncated file behind. Returns the final path
// and the number of bytes written.
func WriteFile(dir, name string, r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(dir, ".part-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", n, fmt.Errorf("write %s: %w", name, err)
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return "", n, fmt.Errorf("rename to %s: %w", dest, err)
	}
	return dest, n, nil
}
