package decl

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pontis-labs/pontis/core/api"
)

// knownPrimitives are scalar type names decoded as primitive shapes. Any
// other scalar is an alias reference, resolved structurally when a matching
// alias exists and left opaque otherwise.
var knownPrimitives = map[string]bool{
	"string":    true,
	"number":    true,
	"boolean":   true,
	"any":       true,
	"void":      true,
	"null":      true,
	"undefined": true,
	"node":      true,
	"element":   true,
}

// declFile is one parsed *.api.yaml declaration file.
type declFile struct {
	Module   string               `yaml:"module"`
	Aliases  map[string]shapeNode `yaml:"aliases"`
	Entities []entityNode         `yaml:"entities"`
}

// entityNode is the on-disk form of one exported entity.
type entityNode struct {
	Name       string      `yaml:"name"`
	Kind       string      `yaml:"kind"`
	Visibility string      `yaml:"visibility"`
	Deprecated bool        `yaml:"deprecated"`
	Params     []paramNode `yaml:"params"`
	Returns    *shapeNode  `yaml:"returns"`
	TypeParams []string    `yaml:"type_params"`
	Type       *shapeNode  `yaml:"type"`
	Value      string      `yaml:"value"`
}

type paramNode struct {
	Name     string    `yaml:"name"`
	Type     shapeNode `yaml:"type"`
	Optional bool      `yaml:"optional"`
	Default  string    `yaml:"default"`
}

type fieldNode struct {
	Name     string    `yaml:"name"`
	Type     shapeNode `yaml:"type"`
	Optional bool      `yaml:"optional"`
}

type funcNode struct {
	Params  []paramNode `yaml:"params"`
	Returns *shapeNode  `yaml:"returns"`
}

// shapeNode is the on-disk form of a type shape. A scalar node is a
// primitive or alias reference; a mapping node spells out one structural
// variant.
type shapeNode struct {
	ref      string
	union    []string
	object   []fieldNode
	function *funcNode
}

// shapeMapping is the decoded form of the mapping variant.
type shapeMapping struct {
	Union    []string    `yaml:"union"`
	Object   []fieldNode `yaml:"object"`
	Function *funcNode   `yaml:"function"`
}

// UnmarshalYAML accepts either `type: string` or a structural mapping like
// `type: {union: [sm, md, lg]}`.
func (n *shapeNode) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		n.ref = value.Value
		return nil
	case yaml.MappingNode:
		var m shapeMapping
		if err := value.Decode(&m); err != nil {
			return err
		}
		declared := 0
		if len(m.Union) > 0 {
			declared++
		}
		if len(m.Object) > 0 {
			declared++
		}
		if m.Function != nil {
			declared++
		}
		if declared != 1 {
			return fmt.Errorf("line %d: shape must declare exactly one of union, object, function", value.Line)
		}
		n.union = m.Union
		n.object = m.Object
		n.function = m.Function
		return nil
	default:
		return fmt.Errorf("line %d: shape must be a scalar or mapping", value.Line)
	}
}

// entityKind validates and converts the on-disk kind string.
func entityKind(s string) (api.EntityKind, error) {
	switch api.EntityKind(s) {
	case api.KindFunction, api.KindType, api.KindConstant, api.KindStyleToken, api.KindComponent:
		return api.EntityKind(s), nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// visibility converts the on-disk visibility string, defaulting to public.
func visibility(s string) (api.Visibility, error) {
	switch s {
	case "", string(api.VisibilityPublic):
		return api.VisibilityPublic, nil
	case string(api.VisibilityInternal):
		return api.VisibilityInternal, nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}
