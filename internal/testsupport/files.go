package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// PNGHeader is the eight-byte PNG signature, enough for content sniffing.
const PNGHeader = "\x89PNG\r\n\x1a\n"

// WriteImage writes a small file that sniffs as PNG and returns its path.
// size pads the file with zero bytes; values below the header length write
// just the header.
func WriteImage(t testing.TB, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := []byte(PNGHeader)
	if size > len(data) {
		data = append(data, make([]byte, size-len(data))...)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
