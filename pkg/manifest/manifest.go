// Package manifest ingests dependency manifests into a resolvable graph.
// Two formats are accepted: the native YAML manifest and, for Go consumers,
// a go.mod file whose requirements become exact-version ranges.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/pontis-labs/pontis/core/resolve"
)

// Package is one installed package in the consumer's graph, with the ranges
// it declares on its own dependencies.
type Package struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Dependencies map[string]string `yaml:"dependencies"`
}

// Manifest describes a consumer: its own declared ranges, the installed
// package graph, and the versions known to exist per package.
type Manifest struct {
	Name         string              `yaml:"name"`
	Version      string              `yaml:"version"`
	Dependencies map[string]string   `yaml:"dependencies"`
	Packages     []Package           `yaml:"packages"`
	Versions     map[string][]string `yaml:"versions"`
	Warnings     []string            `yaml:"-"`
}

// Load reads a YAML manifest from disk.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return Manifest{}, fmt.Errorf("manifest %s has no name", path)
	}
	return m, nil
}

// FromGoMod converts a go.mod file into a manifest. Require directives become
// exact-version ranges; replace directives produce a warning because the
// resolved source may differ from the declared version.
func FromGoMod(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading go.mod: %w", err)
	}

	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("parsing go.mod at %s: %w", path, err)
	}
	if f.Module == nil {
		return Manifest{}, fmt.Errorf("go.mod at %s declares no module", path)
	}

	m := Manifest{
		Name:         f.Module.Mod.Path,
		Dependencies: make(map[string]string),
	}

	replaced := make(map[string]bool)
	for _, rep := range f.Replace {
		replaced[rep.Old.Path] = true
	}

	for _, req := range f.Require {
		m.Dependencies[req.Mod.Path] = req.Mod.Version
		if replaced[req.Mod.Path] {
			m.Warnings = append(m.Warnings, fmt.Sprintf(
				"module %s has a replace directive; the resolved source may differ from %s",
				req.Mod.Path, req.Mod.Version))
		}
	}

	return m, nil
}

// LoadDir loads the manifest for a repository: pontis.yaml when present,
// otherwise go.mod.
func LoadDir(repoPath string) (Manifest, error) {
	yamlPath := filepath.Join(repoPath, "pontis.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return Load(yamlPath)
	}

	gomodPath := filepath.Join(repoPath, "go.mod")
	if _, err := os.Stat(gomodPath); err == nil {
		return FromGoMod(gomodPath)
	}

	return Manifest{}, fmt.Errorf("no pontis.yaml or go.mod found at %s", repoPath)
}

// VersionOf returns the range the consumer itself declares on a package.
func (m Manifest) VersionOf(pkg string) (string, error) {
	if v, ok := m.Dependencies[pkg]; ok {
		return v, nil
	}
	return "", fmt.Errorf("package %s not found in manifest %s", pkg, m.Name)
}

// InstalledVersion returns the concrete version of a package in the
// consumer's graph: the installed package entry when present, otherwise the
// declared range (exact for go.mod manifests).
func (m Manifest) InstalledVersion(pkg string) (string, error) {
	for _, p := range m.Packages {
		if p.Name == pkg {
			return p.Version, nil
		}
	}
	return m.VersionOf(pkg)
}

// Graph converts the manifest into a dependency graph for resolution.
// Requirement order is deterministic: the consumer's own dependencies first,
// then each installed package's, all sorted by name.
func (m Manifest) Graph() resolve.Graph {
	root := resolve.Node{Name: m.Name, Version: m.Version}
	g := resolve.Graph{Root: root, Versions: m.Versions}

	appendDeps := func(dependent resolve.Node, deps map[string]string) {
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			g.Requirements = append(g.Requirements, resolve.Requirement{
				Dependent: dependent,
				Package:   name,
				Range:     deps[name],
			})
		}
	}

	appendDeps(root, m.Dependencies)
	for _, p := range m.Packages {
		appendDeps(resolve.Node{Name: p.Name, Version: p.Version}, p.Dependencies)
	}

	return g
}
