package api

import (
	"sort"
	"strings"
)

// ShapeKind identifies the structural variant of a type shape.
type ShapeKind string

const (
	ShapePrimitive  ShapeKind = "primitive"
	ShapeUnion      ShapeKind = "union"
	ShapeObject     ShapeKind = "object"
	ShapeFunction   ShapeKind = "function"
	ShapeUnresolved ShapeKind = "unresolved"
)

// Shape is a tagged structural description of a type. Exactly one variant
// is populated depending on Kind. Unresolved shapes carry an opaque identity
// token in Name and compare equal only when the tokens match.
type Shape struct {
	Kind    ShapeKind   `json:"kind"`
	Name    string      `json:"name,omitempty"`    // primitive name or unresolved token
	Members []string    `json:"members,omitempty"` // union members, kept sorted
	Fields  []Field     `json:"fields,omitempty"`  // object fields
	Params  []Parameter `json:"params,omitempty"`  // function parameters
	Result  *Shape      `json:"result,omitempty"`  // function result
}

// Field is one named member of an object shape.
type Field struct {
	Name     string `json:"name"`
	Type     Shape  `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// Parameter is one entry of a function or component signature.
type Parameter struct {
	Name     string `json:"name"`
	Type     Shape  `json:"type"`
	Optional bool   `json:"optional,omitempty"`
	Default  string `json:"default,omitempty"` // literal rendering; empty means none
}

// HasDefault reports whether the parameter declares a default value.
func (p Parameter) HasDefault() bool {
	return p.Default != ""
}

// Primitive builds a primitive shape.
func Primitive(name string) Shape {
	return Shape{Kind: ShapePrimitive, Name: name}
}

// Union builds a union shape with members normalized to sorted order.
func Union(members ...string) Shape {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return Shape{Kind: ShapeUnion, Members: sorted}
}

// Unresolved builds an opaque shape identified only by its token.
func Unresolved(token string) Shape {
	return Shape{Kind: ShapeUnresolved, Name: token}
}

// Equal reports structural equality of two shapes.
func (s Shape) Equal(o Shape) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case ShapePrimitive, ShapeUnresolved:
		return s.Name == o.Name
	case ShapeUnion:
		if len(s.Members) != len(o.Members) {
			return false
		}
		for i := range s.Members {
			if s.Members[i] != o.Members[i] {
				return false
			}
		}
		return true
	case ShapeObject:
		if len(s.Fields) != len(o.Fields) {
			return false
		}
		for i := range s.Fields {
			a, b := s.Fields[i], o.Fields[i]
			if a.Name != b.Name || a.Optional != b.Optional || !a.Type.Equal(b.Type) {
				return false
			}
		}
		return true
	case ShapeFunction:
		if len(s.Params) != len(o.Params) {
			return false
		}
		for i := range s.Params {
			a, b := s.Params[i], o.Params[i]
			if a.Name != b.Name || a.Optional != b.Optional || a.Default != b.Default || !a.Type.Equal(b.Type) {
				return false
			}
		}
		if (s.Result == nil) != (o.Result == nil) {
			return false
		}
		if s.Result != nil && !s.Result.Equal(*o.Result) {
			return false
		}
		return true
	}
	return false
}

// memberSet builds a lookup set over union members.
func memberSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return set
}

// NarrowsFrom reports whether s is a strict subset of old. Only union shapes
// narrow structurally; all other variants report false.
func (s Shape) NarrowsFrom(old Shape) bool {
	if s.Kind != ShapeUnion || old.Kind != ShapeUnion {
		return false
	}
	if len(s.Members) >= len(old.Members) {
		return false
	}
	oldSet := memberSet(old.Members)
	for _, m := range s.Members {
		if !oldSet[m] {
			return false
		}
	}
	return true
}

// WidensFrom reports whether s is a strict superset of old.
func (s Shape) WidensFrom(old Shape) bool {
	return old.NarrowsFrom(s)
}

// String renders the shape to its canonical display form. This is the single
// source of truth for shape rendering across the engine.
func (s Shape) String() string {
	switch s.Kind {
	case ShapePrimitive:
		return s.Name
	case ShapeUnresolved:
		return "unresolved<" + s.Name + ">"
	case ShapeUnion:
		return strings.Join(s.Members, " | ")
	case ShapeObject:
		if len(s.Fields) == 0 {
			return "{}"
		}
		parts := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			name := f.Name
			if f.Optional {
				name += "?"
			}
			parts = append(parts, name+": "+f.Type.String())
		}
		return "{" + strings.Join(parts, "; ") + "}"
	case ShapeFunction:
		parts := make([]string, 0, len(s.Params))
		for _, p := range s.Params {
			name := p.Name
			if p.Optional {
				name += "?"
			}
			parts = append(parts, name+": "+p.Type.String())
		}
		out := "(" + strings.Join(parts, ", ") + ")"
		if s.Result != nil {
			return out + " => " + s.Result.String()
		}
		return out + " => void"
	}
	return "unknown"
}
