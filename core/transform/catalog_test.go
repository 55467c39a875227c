package transform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontis-labs/pontis/core/change"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)
	require.Len(t, c.Rules, 3)

	assert.Equal(t, "rename-symbol", c.Rules[0].Name)
	assert.Equal(t, change.KindRenamed, c.Rules[0].ChangeKind)
	assert.True(t, c.Rules[0].Idempotent)

	assert.Equal(t, "params.isInline", c.Rules[1].Pattern)
	assert.False(t, c.Rules[2].Idempotent)
}

func TestCatalogValidate(t *testing.T) {
	valid := Rule{
		Name: "r", ChangeKind: change.KindRenamed,
		Match: "a", Rewrite: "b", Complexity: 1,
	}

	tests := []struct {
		name    string
		mutate  func(*Rule)
		wantErr string
	}{
		{"missing name", func(r *Rule) { r.Name = "" }, "has no name"},
		{"unknown kind", func(r *Rule) { r.ChangeKind = "exploded" }, "unknown change kind"},
		{"complexity too low", func(r *Rule) { r.Complexity = 0 }, "outside [1, 3]"},
		{"complexity too high", func(r *Rule) { r.Complexity = 4 }, "outside [1, 3]"},
		{"empty match", func(r *Rule) { r.Match = "  " }, "empty match token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := Catalog{Rules: []Rule{r}}.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("duplicate names", func(t *testing.T) {
		err := Catalog{Rules: []Rule{valid, valid}}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate rule name")
	})

	t.Run("valid catalog", func(t *testing.T) {
		assert.NoError(t, Catalog{Rules: []Rule{valid}}.Validate())
	})
}

func TestBestMatch_SpecificityWins(t *testing.T) {
	broad := Rule{Name: "broad", ChangeKind: change.KindSignatureChanged, Match: "x", Rewrite: "y", Complexity: 1, Idempotent: true}
	paramLevel := broad
	paramLevel.Name = "param-level"
	paramLevel.Pattern = "params"
	exact := broad
	exact.Name = "exact"
	exact.Pattern = "params.isInline"

	c := Catalog{Rules: []Rule{broad, paramLevel, exact}}
	ch := change.Change{
		Kind:   change.KindSignatureChanged,
		Module: "ui/button",
		Symbol: "Button",
		Deltas: []change.Delta{{Kind: change.DeltaParamRemoved, Path: "params.isInline"}},
	}

	rule, ok, err := c.BestMatch(ch)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "exact", rule.Name)
}

func TestBestMatch_TieIsAmbiguous(t *testing.T) {
	a := Rule{Name: "rule-a", ChangeKind: change.KindSignatureChanged, Pattern: "params.isInline", Match: "x", Rewrite: "y", Complexity: 1}
	b := a
	b.Name = "rule-b"

	c := Catalog{Rules: []Rule{a, b}}
	ch := change.Change{
		Kind:   change.KindSignatureChanged,
		Module: "ui/button",
		Symbol: "Button",
		Deltas: []change.Delta{{Kind: change.DeltaParamRemoved, Path: "params.isInline"}},
	}

	_, ok, err := c.BestMatch(ch)
	assert.False(t, ok)

	var ambiguous *AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "ui/button.Button", ambiguous.Symbol)
	assert.ElementsMatch(t, []string{"rule-a", "rule-b"}, ambiguous.Rules)
}

func TestBestMatch_KindMismatch(t *testing.T) {
	c := Catalog{Rules: []Rule{
		{Name: "r", ChangeKind: change.KindRenamed, Match: "x", Rewrite: "y", Complexity: 1},
	}}
	_, ok, err := c.BestMatch(change.Change{Kind: change.KindRemoved, Symbol: "gone"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBestMatch_PrefixDoesNotMatchSiblings(t *testing.T) {
	// Pattern "params.is" must not match "params.isInline"; prefixes bind on
	// path segments, not raw strings.
	c := Catalog{Rules: []Rule{
		{Name: "r", ChangeKind: change.KindSignatureChanged, Pattern: "params.is", Match: "x", Rewrite: "y", Complexity: 1},
	}}
	ch := change.Change{
		Kind:   change.KindSignatureChanged,
		Deltas: []change.Delta{{Kind: change.DeltaParamRemoved, Path: "params.isInline"}},
	}
	_, ok, err := c.BestMatch(ch)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestComplexityFor(t *testing.T) {
	c := Catalog{Rules: []Rule{
		{Name: "auto", ChangeKind: change.KindRenamed, Match: "${symbol}", Rewrite: "${new_name}", Complexity: 2, Idempotent: true},
		{Name: "manual", ChangeKind: change.KindRemoved, Match: "${symbol}", Rewrite: "z", Complexity: 1, Idempotent: false},
	}}

	renamed := change.Change{Kind: change.KindRenamed, Symbol: "a", NewName: "b"}
	assert.Equal(t, 2.0, c.ComplexityFor(renamed, 3))

	// Non-idempotent rules do not count as automated rewrites.
	removed := change.Change{Kind: change.KindRemoved, Symbol: "a"}
	assert.Equal(t, 3.0, c.ComplexityFor(removed, 3))

	unmatched := change.Change{Kind: change.KindDefaultChanged, Symbol: "a"}
	assert.Equal(t, 3.0, c.ComplexityFor(unmatched, 3))
}
