package decl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/pontis-labs/pontis/core/api"
)

// declSuffix marks declaration files within a surface tree.
const declSuffix = ".api.yaml"

// extractConcurrency bounds the number of declaration files parsed in
// parallel. Modules are independent; partial results merge only after every
// file finishes, so module order never affects the resulting set.
const extractConcurrency = 8

// Extractor parses declaration sets into normalized API models.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(log *zap.Logger) *Extractor {
	return &Extractor{log: log}
}

// parsedFile pairs a declaration file with its parse outcome. Files that
// fail to parse carry a warning instead of aborting the extraction.
type parsedFile struct {
	path    string
	decl    declFile
	warning string
}

// Extract walks the tree at root, parses every declaration file
// concurrently, resolves type aliases across the whole set, and merges the
// results into one immutable model. Extraction is a pure read of the input
// tree and is idempotent: an unchanged tree yields a structurally equal
// model.
func (e *Extractor) Extract(ctx context.Context, root, pkg, version string) (*api.Model, error) {
	paths, err := findDeclFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files found under %s", declSuffix, root)
	}

	// Fan-out: each file parses independently into its own slot; results
	// merge only after the group finishes.
	parsed := make([]parsedFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			parsed[i] = parseDeclFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting declaration set at %s: %w", root, err)
	}

	return e.merge(pkg, version, parsed), nil
}

// parseDeclFile reads and decodes one declaration file. Failures are scoped
// to the file.
func parseDeclFile(path string) parsedFile {
	pf := parsedFile{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		pf.warning = fmt.Sprintf("skipping %s: %v", path, err)
		return pf
	}
	if err := yaml.Unmarshal(data, &pf.decl); err != nil {
		pf.warning = fmt.Sprintf("skipping unparseable module file %s: %v", path, err)
		return pf
	}
	if pf.decl.Module == "" {
		pf.warning = fmt.Sprintf("skipping %s: no module path declared", path)
	}
	return pf
}

// merge fans parsed files into one model. Alias tables merge first so
// references resolve across the whole set; duplicate aliases and duplicate
// entity keys become warnings, first declaration wins.
func (e *Extractor) merge(pkg, version string, parsed []parsedFile) *api.Model {
	model := api.NewModel(pkg, version)

	aliases := make(aliasTable)
	for _, pf := range parsed {
		if pf.warning != "" {
			continue
		}
		for name, shape := range pf.decl.Aliases {
			if _, exists := aliases[name]; exists {
				model.Warn("duplicate alias %s in %s; keeping the first declaration", name, pf.path)
				continue
			}
			aliases[name] = shape
		}
	}
	// Deterministic duplicate handling: map iteration order above only
	// matters within one file, where names are unique by construction.

	r := &resolver{aliases: aliases}

	for _, pf := range parsed {
		if pf.warning != "" {
			e.log.Warn("module extraction failed", zap.String("path", pf.path))
			model.Warn("%s", pf.warning)
			continue
		}

		for _, node := range pf.decl.Entities {
			kind, err := entityKind(node.Kind)
			if err != nil {
				model.Warn("skipping entity %s in %s: %v", node.Name, pf.path, err)
				continue
			}
			vis, err := visibility(node.Visibility)
			if err != nil {
				model.Warn("skipping entity %s in %s: %v", node.Name, pf.path, err)
				continue
			}

			entity := api.Entity{
				Name:       node.Name,
				Kind:       kind,
				Module:     pf.decl.Module,
				Visibility: vis,
				Deprecated: node.Deprecated,
				Signature:  r.signature(node),
			}
			if err := model.Add(entity); err != nil {
				model.Warn("in %s: %v", pf.path, err)
			}
		}
	}

	return model
}

// findDeclFiles collects declaration files under root in sorted order,
// skipping vendored, hidden, and underscore-prefixed directories.
func findDeclFiles(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Skip symlinks to prevent symlink-based path escapes.
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			base := d.Name()
			if path != root && (base == "node_modules" || base == "vendor" || base == "testdata" ||
				strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")) {
				return fs.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(path, declSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking declaration set at %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
