package diff

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadHints(t *testing.T) {
	hints, err := LoadHints(filepath.Join("testdata", "hints.yaml"))
	if err != nil {
		t.Fatalf("LoadHints: %v", err)
	}
	want := []RenameHint{
		{Module: "util/format", OldName: "formatLabel", NewName: "formatText"},
		{Module: "ui/button", OldName: "ButtonGroup", NewName: "ButtonCluster"},
	}
	if diff := cmp.Diff(want, hints); diff != "" {
		t.Errorf("hints mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHints_IncompleteEntry(t *testing.T) {
	_, err := LoadHints(filepath.Join("testdata", "hints_incomplete.yaml"))
	if err == nil {
		t.Fatal("expected error for hint missing new_name")
	}
}

func TestLoadHints_MissingFile(t *testing.T) {
	_, err := LoadHints(filepath.Join("testdata", "no_such_file.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
