package api

import (
	"fmt"
	"sort"
	"strings"
)

// EntityKind identifies what kind of exported entity this is.
type EntityKind string

const (
	KindFunction   EntityKind = "function"
	KindType       EntityKind = "type"
	KindConstant   EntityKind = "constant"
	KindStyleToken EntityKind = "styleToken"
	KindComponent  EntityKind = "component"
)

// Visibility marks whether an entity is part of the public surface.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityInternal Visibility = "internal"
)

// Signature is the structured shape of an entity's contract. Components carry
// their props in Params; functions carry parameters and a result; constants
// and style tokens carry a literal Value and optionally a declared Type.
type Signature struct {
	Params     []Parameter `json:"params,omitempty"`
	Result     *Shape      `json:"result,omitempty"`
	TypeParams []string    `json:"type_params,omitempty"`
	Type       *Shape      `json:"type,omitempty"`  // constants / style tokens
	Value      string      `json:"value,omitempty"` // constants / style tokens
}

// Param returns the named parameter and whether it exists.
func (s Signature) Param(name string) (Parameter, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Equal reports structural equality of two signatures.
func (s Signature) Equal(o Signature) bool {
	if len(s.Params) != len(o.Params) || len(s.TypeParams) != len(o.TypeParams) {
		return false
	}
	for i := range s.Params {
		a, b := s.Params[i], o.Params[i]
		if a.Name != b.Name || a.Optional != b.Optional || a.Default != b.Default || !a.Type.Equal(b.Type) {
			return false
		}
	}
	for i := range s.TypeParams {
		if s.TypeParams[i] != o.TypeParams[i] {
			return false
		}
	}
	if (s.Result == nil) != (o.Result == nil) {
		return false
	}
	if s.Result != nil && !s.Result.Equal(*o.Result) {
		return false
	}
	if (s.Type == nil) != (o.Type == nil) {
		return false
	}
	if s.Type != nil && !s.Type.Equal(*o.Type) {
		return false
	}
	return s.Value == o.Value
}

// String renders the signature to its canonical display form.
func (s Signature) String() string {
	if s.Value != "" || s.Type != nil {
		out := s.Value
		if s.Type != nil {
			out = s.Type.String() + " = " + s.Value
		}
		return out
	}

	parts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		name := p.Name
		if p.Optional {
			name += "?"
		}
		entry := name + ": " + p.Type.String()
		if p.Default != "" {
			entry += " = " + p.Default
		}
		parts = append(parts, entry)
	}
	out := "(" + strings.Join(parts, ", ") + ")"
	if len(s.TypeParams) > 0 {
		out = "<" + strings.Join(s.TypeParams, ", ") + ">" + out
	}
	if s.Result != nil {
		out += " " + s.Result.String()
	}
	return out
}

// Entity is a single exported symbol of one module within a package version.
type Entity struct {
	Name       string     `json:"name"`
	Kind       EntityKind `json:"kind"`
	Module     string     `json:"module"`
	Visibility Visibility `json:"visibility"`
	Deprecated bool       `json:"deprecated,omitempty"`
	Signature  Signature  `json:"signature"`
}

// Key uniquely identifies an entity within one extracted model.
type Key struct {
	Module string `json:"module"`
	Name   string `json:"name"`
}

func (k Key) String() string {
	return k.Module + "." + k.Name
}

// Key returns the entity's unique key.
func (e Entity) Key() Key {
	return Key{Module: e.Module, Name: e.Name}
}

// Public reports whether the entity is part of the public surface.
func (e Entity) Public() bool {
	return e.Visibility == VisibilityPublic
}

// Model is the normalized public surface of one package version. A Model is
// immutable once extraction completes; re-extracting an unchanged tree must
// yield a structurally equal Model.
type Model struct {
	Package  string              `json:"package"`
	Version  string              `json:"version"`
	Modules  map[string][]Entity `json:"modules"`
	Warnings []string            `json:"warnings,omitempty"`
}

// NewModel creates an empty model for the given package version.
func NewModel(pkg, version string) *Model {
	return &Model{
		Package: pkg,
		Version: version,
		Modules: make(map[string][]Entity),
	}
}

// Add inserts an entity, enforcing (module, name) uniqueness.
func (m *Model) Add(e Entity) error {
	for _, existing := range m.Modules[e.Module] {
		if existing.Name == e.Name {
			return fmt.Errorf("duplicate entity %s in module %s", e.Name, e.Module)
		}
	}
	m.Modules[e.Module] = append(m.Modules[e.Module], e)
	return nil
}

// Warn appends an extraction warning.
func (m *Model) Warn(format string, args ...any) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// Lookup returns the entity with the given key, if present.
func (m *Model) Lookup(module, name string) (Entity, bool) {
	for _, e := range m.Modules[module] {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// ModulePaths returns all module paths in sorted order.
func (m *Model) ModulePaths() []string {
	paths := make([]string, 0, len(m.Modules))
	for p := range m.Modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Entities returns all entities ordered by module path, then name. The order
// is deterministic so two extractions of the same tree compare equal.
func (m *Model) Entities() []Entity {
	var out []Entity
	for _, path := range m.ModulePaths() {
		mod := append([]Entity(nil), m.Modules[path]...)
		sort.Slice(mod, func(i, j int) bool { return mod[i].Name < mod[j].Name })
		out = append(out, mod...)
	}
	return out
}
