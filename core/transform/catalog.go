// Package transform compiles a rewrite-rule catalog into executable,
// idempotent source transformations with dry-run and verification modes.
package transform

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pontis-labs/pontis/core/change"
)

// Rule is one catalog entry binding a change pattern to a rewrite.
type Rule struct {
	Name       string      `yaml:"name"`
	Version    int         `yaml:"version"`
	ChangeKind change.Kind `yaml:"change_kind"`
	// Pattern is a structural path prefix matched against the change's delta
	// paths ("params.isInline", "params", "return"). Empty matches any delta
	// of the kind, at the lowest specificity.
	Pattern string `yaml:"pattern"`
	// Match is the source token the precondition looks for. Placeholders
	// ${symbol}, ${new_name}, and ${module} expand from the change.
	Match string `yaml:"match"`
	// Rewrite is the replacement token, with the same placeholders.
	Rewrite    string  `yaml:"rewrite"`
	Complexity float64 `yaml:"complexity"`
	Idempotent bool    `yaml:"idempotent"`
}

// Catalog is a validated set of rewrite rules.
type Catalog struct {
	Rules []Rule `yaml:"rules"`
}

// LoadCatalog reads and validates a YAML rule catalog.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

// Validate checks catalog-level invariants: unique names, known change
// kinds, complexity within [1, 3], and a non-empty match token.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Rules))
	for i, r := range c.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule %d has no name", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true

		switch r.ChangeKind {
		case change.KindRemoved, change.KindAdded, change.KindRenamed,
			change.KindSignatureChanged, change.KindVisibilityChanged, change.KindDefaultChanged:
		default:
			return fmt.Errorf("rule %q has unknown change kind %q", r.Name, r.ChangeKind)
		}

		if r.Complexity < 1 || r.Complexity > 3 {
			return fmt.Errorf("rule %q has complexity %v outside [1, 3]", r.Name, r.Complexity)
		}
		if strings.TrimSpace(r.Match) == "" {
			return fmt.Errorf("rule %q has an empty match token", r.Name)
		}
	}
	return nil
}

// expand substitutes change-derived placeholders into a rule template.
func expand(template string, ch change.Change) string {
	return strings.NewReplacer(
		"${symbol}", ch.Symbol,
		"${new_name}", ch.NewName,
		"${module}", ch.Module,
	).Replace(template)
}

// matches reports whether the rule applies to the change and at what
// specificity (the length of the matched path; -1 when it does not match).
func (r Rule) matches(ch change.Change) int {
	if r.ChangeKind != ch.Kind {
		return -1
	}
	if r.Pattern == "" {
		return 0
	}
	best := -1
	for _, d := range ch.Deltas {
		if d.Path == r.Pattern || strings.HasPrefix(d.Path, r.Pattern+".") {
			if len(r.Pattern) > best {
				best = len(r.Pattern)
			}
		}
	}
	return best
}

// BestMatch finds the most specific rule for a change. Two distinct rules at
// equal specificity are a catalog bug and yield an AmbiguousMatchError.
func (c Catalog) BestMatch(ch change.Change) (Rule, bool, error) {
	best := -1
	var winners []Rule
	for _, r := range c.Rules {
		spec := r.matches(ch)
		if spec < 0 {
			continue
		}
		switch {
		case spec > best:
			best = spec
			winners = []Rule{r}
		case spec == best:
			winners = append(winners, r)
		}
	}

	switch len(winners) {
	case 0:
		return Rule{}, false, nil
	case 1:
		return winners[0], true, nil
	default:
		names := make([]string, len(winners))
		for i, w := range winners {
			names[i] = w.Name
		}
		return Rule{}, false, &AmbiguousMatchError{Symbol: ch.Key().String(), Rules: names}
	}
}

// ComplexityFor returns the matching rule's declared complexity, or fallback
// when no automated rewrite exists (including the ambiguous case, which the
// generator reports separately).
func (c Catalog) ComplexityFor(ch change.Change, fallback float64) float64 {
	rule, ok, err := c.BestMatch(ch)
	if err != nil || !ok || !rule.Idempotent {
		return fallback
	}
	return rule.Complexity
}
