package decl

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pontis-labs/pontis/core/surface"
)

var _ surface.RepoResolver = (*RepoResolver)(nil)

// sourceExtensions are the consumer file types considered for rewriting.
var sourceExtensions = map[string]bool{
	".js":     true,
	".jsx":    true,
	".ts":     true,
	".tsx":    true,
	".mjs":    true,
	".vue":    true,
	".svelte": true,
}

// RepoResolver finds consumer source files that reference a package.
type RepoResolver struct{}

// FindAffectedFiles returns every source file under repoPath that mentions
// the package name, in sorted order. Prefix matching on the package name
// catches subpath imports as well.
func (RepoResolver) FindAffectedFiles(pkg, repoPath string) ([]string, error) {
	needle := []byte(pkg)
	var files []string

	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := d.Name()
			if path != repoPath && (base == "node_modules" || base == "vendor" ||
				strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")) {
				return fs.SkipDir
			}
			return nil
		}

		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		if bytes.Contains(data, needle) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning repository at %s: %w", repoPath, err)
	}

	sort.Strings(files)
	return files, nil
}
