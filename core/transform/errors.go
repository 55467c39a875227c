package transform

import (
	"fmt"
	"strings"
)

// AmbiguousMatchError reports two catalog rules of equal specificity matching
// the same change. It is a programming error in the catalog: generation for
// the affected change is aborted and the error is surfaced so a maintainer
// fixes the rule set.
type AmbiguousMatchError struct {
	Symbol string
	Rules  []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous catalog match for %s: rules %s are equally specific",
		e.Symbol, strings.Join(e.Rules, ", "))
}

// PreconditionError reports that a source file no longer matches the pattern
// a transformation expects at apply time. The transformation is skipped and
// its change remains in the plan as manual-only.
type PreconditionError struct {
	Transformation string
	Path           string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition for %s does not match %s", e.Transformation, e.Path)
}
