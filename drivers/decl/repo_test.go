package decl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeRepoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindAffectedFiles(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/app.tsx", `import { Button } from "design-system"`)
	writeRepoFile(t, root, "src/deep/util.ts", `import { formatLabel } from "design-system/format"`)
	writeRepoFile(t, root, "src/other.ts", `import { thing } from "other-lib"`)
	writeRepoFile(t, root, "README.md", `uses design-system everywhere`)
	writeRepoFile(t, root, "node_modules/design-system/index.js", `module.exports = {}`)
	writeRepoFile(t, root, ".cache/generated.ts", `import "design-system"`)

	files, err := RepoResolver{}.FindAffectedFiles("design-system", root)
	if err != nil {
		t.Fatalf("FindAffectedFiles: %v", err)
	}

	want := []string{
		filepath.Join(root, "src/app.tsx"),
		filepath.Join(root, "src/deep/util.ts"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("affected files mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAffectedFiles_NoMatches(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/app.ts", `console.log("hello")`)

	files, err := RepoResolver{}.FindAffectedFiles("design-system", root)
	if err != nil {
		t.Fatalf("FindAffectedFiles: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no affected files, got %v", files)
	}
}
