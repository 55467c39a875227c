package diff

import (
	"fmt"

	"github.com/pontis-labs/pontis/core/api"
	"github.com/pontis-labs/pontis/core/change"
)

// signatureDeltas computes the atomic structural differences between two
// signatures. Parameters are matched by name, never by position, so a pure
// reorder is reported as reordering rather than remove+add pairs.
func signatureDeltas(old, new api.Signature) []change.Delta {
	var deltas []change.Delta

	oldByName := make(map[string]api.Parameter, len(old.Params))
	for _, p := range old.Params {
		oldByName[p.Name] = p
	}
	newByName := make(map[string]api.Parameter, len(new.Params))
	for _, p := range new.Params {
		newByName[p.Name] = p
	}

	// Removed and changed parameters, in old declaration order.
	for _, oldParam := range old.Params {
		path := "params." + oldParam.Name
		newParam, ok := newByName[oldParam.Name]
		if !ok {
			deltas = append(deltas, change.Delta{
				Kind: change.DeltaParamRemoved,
				Path: path,
				Old:  renderParam(oldParam),
			})
			continue
		}

		if oldParam.Optional && !newParam.Optional {
			deltas = append(deltas, change.Delta{
				Kind: change.DeltaParamRequired,
				Path: path,
				Old:  renderParam(oldParam),
				New:  renderParam(newParam),
			})
		} else if !oldParam.Optional && newParam.Optional {
			deltas = append(deltas, change.Delta{
				Kind: change.DeltaParamOptional,
				Path: path,
				Old:  renderParam(oldParam),
				New:  renderParam(newParam),
			})
		}

		deltas = append(deltas, shapeDeltas(path, oldParam.Type, newParam.Type)...)

		if oldParam.Default != newParam.Default {
			deltas = append(deltas, change.Delta{
				Kind: change.DeltaDefaultChanged,
				Path: path,
				Old:  oldParam.Default,
				New:  newParam.Default,
			})
		}
	}

	// Added parameters, in new declaration order.
	for _, newParam := range new.Params {
		if _, ok := oldByName[newParam.Name]; ok {
			continue
		}
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaParamAdded,
			Path: "params." + newParam.Name,
			New:  renderParam(newParam),
		})
	}

	deltas = append(deltas, reorderDeltas(old.Params, new.Params)...)

	// Result type.
	switch {
	case old.Result == nil && new.Result == nil:
	case old.Result == nil || new.Result == nil:
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaResultChanged,
			Path: "return",
			Old:  renderShapePtr(old.Result),
			New:  renderShapePtr(new.Result),
		})
	case !old.Result.Equal(*new.Result):
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaResultChanged,
			Path: "return",
			Old:  old.Result.String(),
			New:  new.Result.String(),
		})
	}

	// Generic parameters compare as an ordered list.
	if !stringsEqual(old.TypeParams, new.TypeParams) {
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaTypeChanged,
			Path: "type_params",
			Old:  fmt.Sprintf("%v", old.TypeParams),
			New:  fmt.Sprintf("%v", new.TypeParams),
		})
	}

	// Declared type of constants, style tokens, and type entities.
	switch {
	case old.Type == nil && new.Type == nil:
	case old.Type == nil || new.Type == nil:
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaTypeChanged,
			Path: "type",
			Old:  renderShapePtr(old.Type),
			New:  renderShapePtr(new.Type),
		})
	default:
		deltas = append(deltas, shapeDeltas("type", *old.Type, *new.Type)...)
	}

	if old.Value != new.Value {
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaValueChanged,
			Path: "value",
			Old:  old.Value,
			New:  new.Value,
		})
	}

	return deltas
}

// shapeDeltas diffs two shapes at the given path. Union-to-union differences
// are reported per member so enum narrowing is visible to classification;
// everything else that differs collapses to a single type_changed delta.
// Unresolved shapes compare by identity token only.
func shapeDeltas(path string, old, new api.Shape) []change.Delta {
	if old.Equal(new) {
		return nil
	}

	if old.Kind == api.ShapeUnion && new.Kind == api.ShapeUnion {
		var deltas []change.Delta
		newSet := make(map[string]bool, len(new.Members))
		for _, m := range new.Members {
			newSet[m] = true
		}
		oldSet := make(map[string]bool, len(old.Members))
		for _, m := range old.Members {
			oldSet[m] = true
		}
		for _, m := range old.Members {
			if !newSet[m] {
				deltas = append(deltas, change.Delta{
					Kind: change.DeltaEnumValueRemoved,
					Path: path,
					Old:  m,
				})
			}
		}
		for _, m := range new.Members {
			if !oldSet[m] {
				deltas = append(deltas, change.Delta{
					Kind: change.DeltaEnumValueAdded,
					Path: path,
					New:  m,
				})
			}
		}
		return deltas
	}

	return []change.Delta{{
		Kind: change.DeltaTypeChanged,
		Path: path,
		Old:  old.String(),
		New:  new.String(),
	}}
}

// reorderDeltas reports parameters shared by both signatures whose relative
// order changed. Positions are compared within the shared subsequence, so
// removals and additions alone never produce reorder noise.
func reorderDeltas(oldParams, newParams []api.Parameter) []change.Delta {
	newNames := make(map[string]bool, len(newParams))
	for _, p := range newParams {
		newNames[p.Name] = true
	}
	oldNames := make(map[string]bool, len(oldParams))
	for _, p := range oldParams {
		oldNames[p.Name] = true
	}

	var oldShared, newShared []string
	for _, p := range oldParams {
		if newNames[p.Name] {
			oldShared = append(oldShared, p.Name)
		}
	}
	for _, p := range newParams {
		if oldNames[p.Name] {
			newShared = append(newShared, p.Name)
		}
	}

	newIndex := make(map[string]int, len(newShared))
	for i, name := range newShared {
		newIndex[name] = i
	}

	var deltas []change.Delta
	for i, name := range oldShared {
		if j := newIndex[name]; j != i {
			deltas = append(deltas, change.Delta{
				Kind: change.DeltaParamReordered,
				Path: "params." + name,
				Old:  fmt.Sprintf("%d", i),
				New:  fmt.Sprintf("%d", j),
			})
		}
	}
	return deltas
}

func renderParam(p api.Parameter) string {
	name := p.Name
	if p.Optional {
		name += "?"
	}
	out := name + ": " + p.Type.String()
	if p.Default != "" {
		out += " = " + p.Default
	}
	return out
}

func renderShapePtr(s *api.Shape) string {
	if s == nil {
		return ""
	}
	return s.String()
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
