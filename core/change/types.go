package change

import (
	"github.com/pontis-labs/pontis/core/api"
)

// Kind represents the type of API change between two versions.
type Kind string

const (
	KindRemoved           Kind = "removed"
	KindAdded             Kind = "added"
	KindRenamed           Kind = "renamed"
	KindSignatureChanged  Kind = "signature_changed"
	KindVisibilityChanged Kind = "visibility_changed"
	KindDefaultChanged    Kind = "default_changed"
)

// DeltaKind identifies one atomic structural difference inside a signature.
type DeltaKind string

const (
	DeltaParamRemoved      DeltaKind = "param_removed"
	DeltaParamAdded        DeltaKind = "param_added"
	DeltaParamReordered    DeltaKind = "param_reordered"
	DeltaParamRequired     DeltaKind = "param_required" // optional became required
	DeltaParamOptional     DeltaKind = "param_optional" // required became optional
	DeltaTypeNarrowed      DeltaKind = "type_narrowed"
	DeltaTypeWidened       DeltaKind = "type_widened"
	DeltaTypeChanged       DeltaKind = "type_changed"
	DeltaResultChanged     DeltaKind = "result_changed"
	DeltaEnumValueRemoved  DeltaKind = "enum_value_removed"
	DeltaEnumValueAdded    DeltaKind = "enum_value_added"
	DeltaValueChanged      DeltaKind = "value_changed"
	DeltaDefaultChanged    DeltaKind = "default_changed"
	DeltaVisibilityChanged DeltaKind = "visibility_changed"
	DeltaKindChanged       DeltaKind = "kind_changed" // full replacement, no sub-diff
)

// Delta is one atomic structural difference. Path locates the difference
// inside the signature ("params.variant", "return", "value") so rewrite rules
// can match on it.
type Delta struct {
	Kind DeltaKind `json:"kind"`
	Path string    `json:"path"`
	Old  string    `json:"old,omitempty"`
	New  string    `json:"new,omitempty"`
}

// Change represents a single API change for one entity. The differ emits at
// most one Change per (module, name) key; all atomic deltas for that entity
// are aggregated into Deltas.
type Change struct {
	Kind    Kind        `json:"kind"`
	Module  string      `json:"module"`
	Symbol  string      `json:"symbol"`
	NewName string      `json:"new_name,omitempty"` // renamed only
	Old     *api.Entity `json:"old,omitempty"`
	New     *api.Entity `json:"new,omitempty"`
	Deltas  []Delta     `json:"deltas,omitempty"`
}

// Key returns the entity key this change refers to.
func (c Change) Key() api.Key {
	return api.Key{Module: c.Module, Name: c.Symbol}
}

// Severity tiers, highest first.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityMajor       Severity = "major"
	SeverityMinor       Severity = "minor"
	SeverityDeprecation Severity = "deprecation"
)

// Rank orders severities for comparisons; higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityDeprecation:
		return 1
	}
	return 0
}

// Impact score bands, used only for report ordering.
const (
	BandExtremelyHigh = "extremely high"
	BandHigh          = "high"
	BandModerate      = "moderate"
	BandLow           = "low"
)

// BandFor maps an impact score to its report band.
func BandFor(score float64) string {
	switch {
	case score >= 100:
		return BandExtremelyHigh
	case score >= 50:
		return BandHigh
	case score >= 20:
		return BandModerate
	default:
		return BandLow
	}
}

// ClassifiedChange is a Change plus its severity tier and impact score.
// Created once per Change and never mutated; re-classifying the same Change
// with the same inputs yields an equal ClassifiedChange.
type ClassifiedChange struct {
	Change
	Severity    Severity `json:"severity"`
	ImpactScore float64  `json:"impact_score"`
	Band        string   `json:"band"`
}
