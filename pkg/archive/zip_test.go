package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractZip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"ui/button.api.yaml":   "module: ui/button\n",
		"util/format.api.yaml": "module: util/format\n",
	})

	dir, cleanup, err := ExtractZip(data, "5.4.1")
	if err != nil {
		t.Fatalf("ExtractZip: %v", err)
	}
	defer cleanup()

	got, err := os.ReadFile(filepath.Join(dir, "ui", "button.api.yaml"))
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(got) != "module: ui/button\n" {
		t.Errorf("content = %q", got)
	}

	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cleanup should remove the extraction directory, stat err = %v", err)
	}
}

func TestExtractZip_RejectsPathTraversal(t *testing.T) {
	data := buildZip(t, map[string]string{
		"../evil.txt": "escaped",
	})

	_, _, err := ExtractZip(data, "x")
	if err == nil {
		t.Fatal("expected zip-slip rejection")
	}
}

func TestExtractZip_RejectsGarbage(t *testing.T) {
	if _, _, err := ExtractZip([]byte("not a zip archive"), "x"); err == nil {
		t.Fatal("expected error for non-zip bytes")
	}
}

func TestExtractZip_NestedDirectories(t *testing.T) {
	data := buildZip(t, map[string]string{
		"a/b/c/deep.api.yaml": "module: deep\n",
	})

	dir, cleanup, err := ExtractZip(data, "x")
	if err != nil {
		t.Fatalf("ExtractZip: %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(filepath.Join(dir, "a", "b", "c", "deep.api.yaml")); err != nil {
		t.Errorf("nested entry missing: %v", err)
	}
}
