package transform

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pontis-labs/pontis/core/change"
)

// Transformation is an executable rewrite for one classified change. It is
// pure: the same input bytes always produce the same output bytes, and
// applying it to already-migrated source is a no-op because the precondition
// no longer matches.
type Transformation struct {
	Name    string                  `json:"name"`
	Version int                     `json:"version"`
	Rule    Rule                    `json:"rule"`
	Change  change.ClassifiedChange `json:"change"`

	match   string
	rewrite string
	pre     *regexp.Regexp
}

// newTransformation expands the rule's templates for the change and compiles
// the precondition pattern (the match token on word boundaries).
func newTransformation(rule Rule, ch change.ClassifiedChange) (*Transformation, error) {
	match := expand(rule.Match, ch.Change)
	rewrite := expand(rule.Rewrite, ch.Change)
	if match == rewrite {
		return nil, fmt.Errorf("rule %q rewrites %q to itself for %s", rule.Name, match, ch.Key())
	}

	pre, err := regexp.Compile(`\b` + regexp.QuoteMeta(match) + `\b`)
	if err != nil {
		return nil, fmt.Errorf("compiling precondition for rule %q: %w", rule.Name, err)
	}

	return &Transformation{
		Name:    rule.Name,
		Version: rule.Version,
		Rule:    rule,
		Change:  ch,
		match:   match,
		rewrite: rewrite,
		pre:     pre,
	}, nil
}

// Precondition reports whether the source still contains the pattern this
// transformation rewrites.
func (t *Transformation) Precondition(src []byte) bool {
	return t.pre.Match(src)
}

// CheckPrecondition is the error-typed form of Precondition, for callers that
// record why a file was passed over.
func (t *Transformation) CheckPrecondition(path string, src []byte) error {
	if !t.pre.Match(src) {
		return &PreconditionError{Transformation: t.Name, Path: path}
	}
	return nil
}

// Apply rewrites every occurrence of the match token. Pure; the caller owns
// writing the result back.
func (t *Transformation) Apply(src []byte) []byte {
	return t.pre.ReplaceAll(src, []byte(t.rewrite))
}

// Verify checks idempotence on the given source: after one application the
// precondition must no longer match, so a second application is a no-op.
func (t *Transformation) Verify(src []byte) error {
	out := t.Apply(src)
	if t.Precondition(out) {
		return fmt.Errorf("transformation %s is not idempotent: precondition still matches after apply", t.Name)
	}
	return nil
}

// DryRunDiff renders a unified diff of the rewrite against the unmodified
// source, for review before application.
func (t *Transformation) DryRunDiff(path string, src []byte) (string, error) {
	return unifiedDiff(path, src, t.Apply(src))
}

// unifiedDiff renders a unified diff between two versions of one file.
func unifiedDiff(path string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
}

// Result is the outcome of generation: executable transformations plus the
// changes that have no automated rewrite and require manual migration.
type Result struct {
	Transformations []*Transformation
	ManualOnly      []change.ClassifiedChange
}

// Generate compiles a transformation per classified change from the catalog.
// Changes without a matching idempotent rule are surfaced as manual-only,
// never silently dropped. Ambiguous catalog matches abort generation for the
// affected change only; all ambiguities are joined into the returned error so
// one run exposes every catalog bug.
func Generate(changes []change.ClassifiedChange, catalog Catalog) (Result, error) {
	var res Result
	var errs []error

	for _, ch := range changes {
		rule, ok, err := catalog.BestMatch(ch.Change)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok || !rule.Idempotent {
			res.ManualOnly = append(res.ManualOnly, ch)
			continue
		}

		t, err := newTransformation(rule, ch)
		if err != nil {
			errs = append(errs, err)
			res.ManualOnly = append(res.ManualOnly, ch)
			continue
		}
		res.Transformations = append(res.Transformations, t)
	}

	return res, errors.Join(errs...)
}
