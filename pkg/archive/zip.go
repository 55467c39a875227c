package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	maxEntrySize = 64 * 1024 * 1024  // 64 MB per entry
	maxTotalSize = 512 * 1024 * 1024 // 512 MB total extracted
	maxEntries   = 20000             // declaration archives are small
)

// ExtractZip unpacks a declaration archive to a temp directory and returns
// the extracted path plus a cleanup function that removes it. Every entry
// path is validated against traversal (zip-slip), and size limits guard
// against archive bombs.
func ExtractZip(data []byte, prefix string) (dir string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "pontis-"+prefix+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp directory: %w", err)
	}
	cleanupFn := func() { os.RemoveAll(tmpDir) }

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		cleanupFn()
		return "", nil, fmt.Errorf("reading zip archive: %w", err)
	}

	if len(reader.File) > maxEntries {
		cleanupFn()
		return "", nil, fmt.Errorf("archive has %d entries, exceeds maximum of %d", len(reader.File), maxEntries)
	}

	base, err := filepath.Abs(tmpDir)
	if err != nil {
		cleanupFn()
		return "", nil, fmt.Errorf("resolving temp directory: %w", err)
	}

	var total int64
	for _, entry := range reader.File {
		n, err := extractEntry(entry, base)
		if err != nil {
			cleanupFn()
			return "", nil, err
		}
		total += n
		if total > maxTotalSize {
			cleanupFn()
			return "", nil, fmt.Errorf("total extracted size exceeds %d bytes", maxTotalSize)
		}
	}

	return tmpDir, cleanupFn, nil
}

// extractEntry writes one archive entry under base, returning the number of
// bytes written. Symlinks are skipped entirely.
func extractEntry(entry *zip.File, base string) (int64, error) {
	if entry.Mode()&os.ModeSymlink != 0 {
		return 0, nil
	}

	target, err := filepath.Abs(filepath.Join(base, entry.Name))
	if err != nil {
		return 0, fmt.Errorf("resolving path %s: %w", entry.Name, err)
	}
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return 0, fmt.Errorf("zip entry attempts path traversal: %s", entry.Name)
	}

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return 0, fmt.Errorf("creating directory %s: %w", entry.Name, err)
		}
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("creating parent directory for %s: %w", entry.Name, err)
	}

	rc, err := entry.Open()
	if err != nil {
		return 0, fmt.Errorf("opening zip entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("creating file %s: %w", entry.Name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return 0, fmt.Errorf("extracting %s: %w", entry.Name, err)
	}
	if n > maxEntrySize {
		return 0, fmt.Errorf("entry %s exceeds maximum size of %d bytes", entry.Name, maxEntrySize)
	}

	return n, nil
}
