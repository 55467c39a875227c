// Package plan orders classified changes, transformations, and unresolved
// conflicts into migration phases. The planner exclusively owns plan
// construction; downstream reporting only reads the result.
package plan

import (
	"github.com/pontis-labs/pontis/core/change"
	"github.com/pontis-labs/pontis/core/resolve"
	"github.com/pontis-labs/pontis/core/transform"
)

// PhaseKind names one step of the migration state machine. Phases run in
// declaration order: Preparation is initial, Validation terminal.
type PhaseKind string

const (
	PhasePreparation PhaseKind = "preparation"
	PhaseLowRisk     PhaseKind = "low_risk"
	PhaseHighRisk    PhaseKind = "high_risk"
	PhaseValidation  PhaseKind = "validation"
)

// Phase groups the work that can proceed together.
type Phase struct {
	Kind            PhaseKind                   `json:"kind"`
	Changes         []change.ClassifiedChange   `json:"changes,omitempty"`
	Transformations []*transform.Transformation `json:"transformations,omitempty"`
	Conflicts       []resolve.Conflict          `json:"conflicts,omitempty"`
}

// Plan is the ordered migration plan for one package upgrade.
type Plan struct {
	Package    string  `json:"package"`
	OldVersion string  `json:"old_version"`
	NewVersion string  `json:"new_version"`
	Phases     []Phase `json:"phases"`
}

// Build constructs the plan:
//
//   - Unresolved conflicts go to Preparation; dependency state must settle
//     before any code transformation runs, since it decides which API model
//     is even in effect.
//   - A change with an automated idempotent transformation and severity at
//     most major goes to LowRisk.
//   - Everything else, including manual-only changes, goes to HighRisk.
//   - Validation re-references every transformation so callers re-run the
//     precondition checks, which must no longer match after application.
func Build(pkg, oldVersion, newVersion string, gen transform.Result, conflicts []resolve.Conflict) Plan {
	preparation := Phase{Kind: PhasePreparation, Conflicts: conflicts}
	lowRisk := Phase{Kind: PhaseLowRisk}
	highRisk := Phase{Kind: PhaseHighRisk}
	validation := Phase{Kind: PhaseValidation}

	for _, t := range gen.Transformations {
		if t.Change.Severity.Rank() <= change.SeverityMajor.Rank() {
			lowRisk.Changes = append(lowRisk.Changes, t.Change)
			lowRisk.Transformations = append(lowRisk.Transformations, t)
		} else {
			highRisk.Changes = append(highRisk.Changes, t.Change)
			highRisk.Transformations = append(highRisk.Transformations, t)
		}
		validation.Transformations = append(validation.Transformations, t)
	}

	highRisk.Changes = append(highRisk.Changes, gen.ManualOnly...)

	return Plan{
		Package:    pkg,
		OldVersion: oldVersion,
		NewVersion: newVersion,
		Phases:     []Phase{preparation, lowRisk, highRisk, validation},
	}
}

// Phase returns the phase of the given kind.
func (p Plan) Phase(kind PhaseKind) Phase {
	for _, ph := range p.Phases {
		if ph.Kind == kind {
			return ph
		}
	}
	return Phase{Kind: kind}
}
