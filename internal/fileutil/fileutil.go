package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const fileMode os.FileMode = 0o644

// WriteStream copies r into dst through a temporary file in the same
// directory and renames it into place once complete. When expectedSize is
// non-negative the written byte count must match it. dst is never left
// partially written. The file is created with mode 0644.
func WriteStream(dst string, r io.Reader, expectedSize int64) (int64, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, err
	}
	if expectedSize >= 0 && written != expectedSize {
		return written, fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", expectedSize, written)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		return written, err
	}
	if err := tmp.Close(); err != nil {
		return written, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return written, err
	}
	committed = true
	return written, nil
}
