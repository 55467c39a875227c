// Package diff structurally compares two extracted API models and emits the
// raw change list consumed by classification and planning.
package diff

import (
	"sort"

	"github.com/pontis-labs/pontis/core/api"
	"github.com/pontis-labs/pontis/core/change"
)

// RenameHint declares that an entity was renamed between the two versions.
// Renames are never inferred heuristically; a rename without a hint surfaces
// as one removed plus one added change.
type RenameHint struct {
	Module  string `json:"module" yaml:"module"`
	OldName string `json:"old_name" yaml:"old_name"`
	NewName string `json:"new_name" yaml:"new_name"`
}

// Options controls a single diff run.
type Options struct {
	Hints []RenameHint
}

// diffState holds the working state across all diff passes.
type diffState struct {
	oldByKey   map[api.Key]*api.Entity
	newByKey   map[api.Key]*api.Entity
	matchedOld map[api.Key]bool
	matchedNew map[api.Key]bool
	changes    []change.Change
}

// newDiffState builds indexed lookup maps from the old and new models.
func newDiffState(old, new *api.Model) *diffState {
	s := &diffState{
		oldByKey:   make(map[api.Key]*api.Entity),
		newByKey:   make(map[api.Key]*api.Entity),
		matchedOld: make(map[api.Key]bool),
		matchedNew: make(map[api.Key]bool),
	}
	for _, e := range old.Entities() {
		e := e
		s.oldByKey[e.Key()] = &e
	}
	for _, e := range new.Entities() {
		e := e
		s.newByKey[e.Key()] = &e
	}
	return s
}

// Diff compares two models and emits at most one Change per entity key.
// Runs four passes: rename hints, exact match, matched-entity deltas,
// leftovers. Output order is deterministic (module path, then symbol).
func Diff(old, new *api.Model, opts Options) []change.Change {
	s := newDiffState(old, new)
	s.applyHints(opts.Hints)
	s.exactMatch()
	s.changed()
	s.leftovers()

	sort.Slice(s.changes, func(i, j int) bool {
		a, b := s.changes[i], s.changes[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Kind < b.Kind
	})
	return s.changes
}

func (s *diffState) markMatched(oldKey, newKey api.Key) {
	s.matchedOld[oldKey] = true
	s.matchedNew[newKey] = true
}

func (s *diffState) emit(c change.Change) {
	s.changes = append(s.changes, c)
}

// sortedKeys returns map keys in deterministic order.
func sortedKeys(m map[api.Key]*api.Entity) []api.Key {
	keys := make([]api.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Module != keys[j].Module {
			return keys[i].Module < keys[j].Module
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

func (s *diffState) unmatchedOld() []api.Key {
	var keys []api.Key
	for _, k := range sortedKeys(s.oldByKey) {
		if !s.matchedOld[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *diffState) unmatchedNew() []api.Key {
	var keys []api.Key
	for _, k := range sortedKeys(s.newByKey) {
		if !s.matchedNew[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Pass 1: explicit rename hints. A hint only applies when the old name exists
// in the old model, the new name exists in the new model, and neither side is
// already matched. Signature deltas ride along on the renamed change so the
// entity still produces exactly one Change.
func (s *diffState) applyHints(hints []RenameHint) {
	for _, h := range hints {
		oldKey := api.Key{Module: h.Module, Name: h.OldName}
		newKey := api.Key{Module: h.Module, Name: h.NewName}

		oldEnt, okOld := s.oldByKey[oldKey]
		newEnt, okNew := s.newByKey[newKey]
		if !okOld || !okNew || s.matchedOld[oldKey] || s.matchedNew[newKey] {
			continue
		}

		c := change.Change{
			Kind:    change.KindRenamed,
			Module:  h.Module,
			Symbol:  h.OldName,
			NewName: h.NewName,
			Old:     oldEnt,
			New:     newEnt,
		}
		c.Deltas = entityDeltas(oldEnt, newEnt)
		s.emit(c)
		s.markMatched(oldKey, newKey)
	}
}

// Pass 2: identical entities (same key, same kind, visibility, and signature)
// are silently consumed.
func (s *diffState) exactMatch() {
	for _, key := range sortedKeys(s.oldByKey) {
		if s.matchedOld[key] {
			continue
		}
		newEnt, ok := s.newByKey[key]
		if !ok || s.matchedNew[key] {
			continue
		}
		oldEnt := s.oldByKey[key]
		if oldEnt.Kind == newEnt.Kind &&
			oldEnt.Visibility == newEnt.Visibility &&
			oldEnt.Signature.Equal(newEnt.Signature) {
			s.markMatched(key, key)
		}
	}
}

// Pass 3: matched keys that differ. All atomic deltas for one entity merge
// into a single Change; the change kind is signature_changed unless the only
// differences are default values or visibility.
func (s *diffState) changed() {
	for _, key := range s.unmatchedOld() {
		newEnt, ok := s.newByKey[key]
		if !ok || s.matchedNew[key] {
			continue
		}
		oldEnt := s.oldByKey[key]

		deltas := entityDeltas(oldEnt, newEnt)
		if len(deltas) == 0 {
			// Only non-contract metadata differs (e.g. a deprecation marker
			// was added); not a Change.
			s.markMatched(key, key)
			continue
		}

		s.emit(change.Change{
			Kind:   changeKindFor(deltas),
			Module: key.Module,
			Symbol: key.Name,
			Old:    oldEnt,
			New:    newEnt,
			Deltas: deltas,
		})
		s.markMatched(key, key)
	}
}

// Pass 4: remaining old entities are removed, remaining new entities added.
func (s *diffState) leftovers() {
	for _, key := range s.unmatchedOld() {
		oldEnt := s.oldByKey[key]
		s.emit(change.Change{
			Kind:   change.KindRemoved,
			Module: key.Module,
			Symbol: key.Name,
			Old:    oldEnt,
		})
	}
	for _, key := range s.unmatchedNew() {
		newEnt := s.newByKey[key]
		s.emit(change.Change{
			Kind:   change.KindAdded,
			Module: key.Module,
			Symbol: key.Name,
			New:    newEnt,
		})
	}
}

// entityDeltas aggregates every atomic difference between two entities
// sharing a key. A kind change produces a full-replacement delta instead of a
// member-wise sub-diff.
func entityDeltas(old, new *api.Entity) []change.Delta {
	var deltas []change.Delta

	if old.Kind != new.Kind {
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaKindChanged,
			Path: "kind",
			Old:  string(old.Kind),
			New:  string(new.Kind),
		})
	} else {
		deltas = append(deltas, signatureDeltas(old.Signature, new.Signature)...)
	}

	if old.Visibility != new.Visibility {
		deltas = append(deltas, change.Delta{
			Kind: change.DeltaVisibilityChanged,
			Path: "visibility",
			Old:  string(old.Visibility),
			New:  string(new.Visibility),
		})
	}

	return deltas
}

// changeKindFor derives the Change kind from the aggregated deltas.
func changeKindFor(deltas []change.Delta) change.Kind {
	onlyDefault := true
	onlyVisibility := true
	for _, d := range deltas {
		if d.Kind != change.DeltaDefaultChanged {
			onlyDefault = false
		}
		if d.Kind != change.DeltaVisibilityChanged {
			onlyVisibility = false
		}
	}
	switch {
	case onlyDefault:
		return change.KindDefaultChanged
	case onlyVisibility:
		return change.KindVisibilityChanged
	default:
		return change.KindSignatureChanged
	}
}
