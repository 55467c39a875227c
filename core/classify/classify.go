// Package classify assigns severity tiers and impact scores to raw changes.
// Classification is deterministic: the same change with the same weights,
// corpus stats, and complexity lookup always yields the same result.
package classify

import (
	"strings"

	"github.com/pontis-labs/pontis/core/api"
	"github.com/pontis-labs/pontis/core/change"
	"github.com/pontis-labs/pontis/pkg/corpus"
)

// ComplexityFunc returns the migration complexity weight for a change,
// typically the matching rewrite rule's declared complexity. A nil lookup
// means no automated rewrite exists and the manual default applies.
type ComplexityFunc func(change.Change) float64

// Classifier evaluates the severity rule table and computes impact scores.
type Classifier struct {
	weights    Weights
	stats      *corpus.Stats // nil when no corpus was scanned
	complexity ComplexityFunc
}

// New creates a Classifier. stats and complexity may be nil.
func New(weights Weights, stats *corpus.Stats, complexity ComplexityFunc) *Classifier {
	return &Classifier{weights: weights, stats: stats, complexity: complexity}
}

// Classify assigns a severity and impact score to one change.
func (c *Classifier) Classify(ch change.Change) change.ClassifiedChange {
	sev := c.severity(ch)

	prevalence := c.weights.prevalenceWeight(c.stats.Fraction(ch.Symbol), c.stats != nil)

	complexity := c.weights.ComplexityManual
	if c.complexity != nil {
		complexity = c.complexity(ch)
	}

	score := c.weights.Severity[sev] * prevalence * complexity

	return change.ClassifiedChange{
		Change:      ch,
		Severity:    sev,
		ImpactScore: score,
		Band:        change.BandFor(score),
	}
}

// ClassifyAll classifies every change, preserving input order.
func (c *Classifier) ClassifyAll(changes []change.Change) []change.ClassifiedChange {
	out := make([]change.ClassifiedChange, 0, len(changes))
	for _, ch := range changes {
		out = append(out, c.Classify(ch))
	}
	return out
}

// severity evaluates the rule table in priority order; the first matching
// tier wins. Changes matching no rule default to minor.
func (c *Classifier) severity(ch change.Change) change.Severity {
	if c.isCritical(ch) {
		return change.SeverityCritical
	}
	if c.isMajor(ch) {
		return change.SeverityMajor
	}
	if c.isMinor(ch) {
		return change.SeverityMinor
	}
	if isDeprecation(ch) {
		return change.SeverityDeprecation
	}
	return change.SeverityMinor
}

// isCritical: removal of a public, non-deprecated entity; a previously
// optional parameter becoming required with no default; or a new required
// parameter added with no default.
func (c *Classifier) isCritical(ch change.Change) bool {
	if ch.Kind == change.KindRemoved {
		return ch.Old != nil && ch.Old.Public() && !ch.Old.Deprecated
	}

	for _, d := range ch.Deltas {
		switch d.Kind {
		case change.DeltaParamRequired:
			if p, ok := newParam(ch, d); ok && !p.HasDefault() {
				return true
			}
		case change.DeltaParamAdded:
			if p, ok := newParam(ch, d); ok && !p.Optional && !p.HasDefault() {
				return true
			}
		}
	}
	return false
}

// isMajor: explicit renames, enum value removal, callback signature changes,
// kind or declared-type replacement, return type changes, required parameter
// removal, and (under the strict policy knob) optional parameter removal.
func (c *Classifier) isMajor(ch change.Change) bool {
	if ch.Kind == change.KindRenamed {
		return true
	}

	for _, d := range ch.Deltas {
		switch d.Kind {
		case change.DeltaEnumValueRemoved, change.DeltaKindChanged, change.DeltaResultChanged:
			return true
		case change.DeltaTypeChanged:
			// Covers callback signature changes and declared-type
			// replacements alike: both break existing call sites.
			return true
		case change.DeltaParamRemoved:
			p, ok := oldParam(ch, d)
			if !ok {
				continue
			}
			if !p.Optional {
				return true
			}
			if c.weights.StrictOptionalRemoval {
				return true
			}
		case change.DeltaVisibilityChanged:
			if d.New == string(api.VisibilityInternal) {
				return true
			}
		}
	}
	return false
}

// isMinor: default-value changes, optional parameter additions or removals,
// type widening, and other non-breaking signature adjustments.
func (c *Classifier) isMinor(ch change.Change) bool {
	for _, d := range ch.Deltas {
		switch d.Kind {
		case change.DeltaDefaultChanged, change.DeltaEnumValueAdded,
			change.DeltaParamOptional, change.DeltaParamReordered,
			change.DeltaTypeWidened, change.DeltaValueChanged:
			return true
		case change.DeltaParamAdded:
			if p, ok := newParam(ch, d); ok && (p.Optional || p.HasDefault()) {
				return true
			}
		case change.DeltaParamRemoved:
			if p, ok := oldParam(ch, d); ok && p.Optional {
				return true
			}
		}
	}
	return false
}

// isDeprecation: the old entity carried a deprecation annotation and still
// resolves in the new model.
func isDeprecation(ch change.Change) bool {
	return ch.Old != nil && ch.Old.Deprecated && ch.New != nil && ch.Kind != change.KindRemoved
}

// paramName extracts the parameter name from a delta path like "params.b".
func paramName(path string) (string, bool) {
	name, ok := strings.CutPrefix(path, "params.")
	return name, ok
}

func oldParam(ch change.Change, d change.Delta) (api.Parameter, bool) {
	name, ok := paramName(d.Path)
	if !ok || ch.Old == nil {
		return api.Parameter{}, false
	}
	return ch.Old.Signature.Param(name)
}

func newParam(ch change.Change, d change.Delta) (api.Parameter, bool) {
	name, ok := paramName(d.Path)
	if !ok || ch.New == nil {
		return api.Parameter{}, false
	}
	return ch.New.Signature.Param(name)
}
