package decl

import (
	"github.com/pontis-labs/pontis/core/api"
)

// aliasTable maps alias names to their declared (unresolved) shape nodes,
// merged across every declaration file in the set.
type aliasTable map[string]shapeNode

// resolver converts shape nodes to structural api.Shape values, following
// alias references so no resolvable reference survives into the emitted
// signature. Unknown references become opaque unresolved shapes keyed by
// their name; cyclic aliases terminate the same way.
type resolver struct {
	aliases aliasTable
}

func (r *resolver) shape(n shapeNode, seen map[string]bool) api.Shape {
	switch {
	case len(n.union) > 0:
		return api.Union(n.union...)

	case len(n.object) > 0:
		fields := make([]api.Field, 0, len(n.object))
		for _, f := range n.object {
			fields = append(fields, api.Field{
				Name:     f.Name,
				Type:     r.shape(f.Type, seen),
				Optional: f.Optional,
			})
		}
		return api.Shape{Kind: api.ShapeObject, Fields: fields}

	case n.function != nil:
		params := make([]api.Parameter, 0, len(n.function.Params))
		for _, p := range n.function.Params {
			params = append(params, api.Parameter{
				Name:     p.Name,
				Type:     r.shape(p.Type, seen),
				Optional: p.Optional,
				Default:  p.Default,
			})
		}
		fn := api.Shape{Kind: api.ShapeFunction, Params: params}
		if n.function.Returns != nil {
			result := r.shape(*n.function.Returns, seen)
			fn.Result = &result
		}
		return fn

	default:
		return r.reference(n.ref, seen)
	}
}

// reference resolves a scalar type reference: primitive, alias, or opaque.
func (r *resolver) reference(name string, seen map[string]bool) api.Shape {
	if knownPrimitives[name] {
		return api.Primitive(name)
	}

	target, ok := r.aliases[name]
	if !ok || seen[name] {
		return api.Unresolved(name)
	}

	seen[name] = true
	resolved := r.shape(target, seen)
	delete(seen, name)
	return resolved
}

// signature builds the structured signature for one declared entity.
func (r *resolver) signature(n entityNode) api.Signature {
	sig := api.Signature{
		TypeParams: n.TypeParams,
		Value:      n.Value,
	}

	for _, p := range n.Params {
		sig.Params = append(sig.Params, api.Parameter{
			Name:     p.Name,
			Type:     r.shape(p.Type, map[string]bool{}),
			Optional: p.Optional,
			Default:  p.Default,
		})
	}

	if n.Returns != nil {
		result := r.shape(*n.Returns, map[string]bool{})
		sig.Result = &result
	}

	if n.Type != nil {
		typ := r.shape(*n.Type, map[string]bool{})
		sig.Type = &typ
	}

	return sig
}
