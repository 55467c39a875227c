package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appGraph(requirements []Requirement, versions map[string][]string) Graph {
	return Graph{
		Root:         Node{Name: "consumer-app", Version: "1.0.0"},
		Requirements: requirements,
		Versions:     versions,
	}
}

func TestResolve_SelectsMaxSatisfyingVersion(t *testing.T) {
	g := appGraph([]Requirement{
		{Dependent: Node{Name: "consumer-app", Version: "1.0.0"}, Package: "core-lib", Range: "^5.0.0"},
		{Dependent: Node{Name: "widgets", Version: "2.1.0"}, Package: "core-lib", Range: ">=5.2.0"},
	}, map[string][]string{
		"core-lib": {"5.0.0", "5.2.0", "5.4.1", "6.0.0"},
	})

	res := Resolve(g)
	require.Empty(t, res.Conflicts)
	assert.Equal(t, "5.4.1", res.Selected["core-lib"])
}

func TestResolve_DisjointCaretRangesConflict(t *testing.T) {
	app := Node{Name: "consumer-app", Version: "1.0.0"}
	g := appGraph([]Requirement{
		{Dependent: app, Package: "widgets", Range: "^2.0.0"},
		{Dependent: app, Package: "core-lib", Range: "^6.0.0"},
		{Dependent: Node{Name: "widgets", Version: "2.1.0"}, Package: "core-lib", Range: "^5.0.0"},
	}, map[string][]string{
		"core-lib": {"5.4.1", "6.0.0"},
		"widgets":  {"2.1.0"},
	})

	res := Resolve(g)
	require.Len(t, res.Conflicts, 1)

	c := res.Conflicts[0]
	assert.Equal(t, "core-lib", c.Package)
	require.Len(t, c.Demands, 2)

	// Each demand carries the dependent chain back to the root.
	chains := map[string][]string{}
	for _, d := range c.Demands {
		chains[d.Range] = d.Chain
	}
	assert.Equal(t, []string{"consumer-app@1.0.0"}, chains["^6.0.0"])
	assert.Equal(t, []string{"consumer-app@1.0.0", "widgets@2.1.0"}, chains["^5.0.0"])

	// A conflicted package still appears in Selected, explicitly empty.
	v, ok := res.Selected["core-lib"]
	require.True(t, ok)
	assert.Empty(t, v)

	// The unconflicted package resolves normally.
	assert.Equal(t, "2.1.0", res.Selected["widgets"])
}

func TestResolve_ConflictProposesStrategies(t *testing.T) {
	app := Node{Name: "consumer-app", Version: "1.0.0"}
	g := appGraph([]Requirement{
		{Dependent: app, Package: "core-lib", Range: "^6.0.0"},
		{Dependent: Node{Name: "widgets", Version: "2.1.0"}, Package: "core-lib", Range: "^5.0.0"},
	}, nil)

	res := Resolve(g)
	require.Len(t, res.Conflicts, 1)

	kinds := map[StrategyKind]bool{}
	for _, s := range res.Conflicts[0].Strategies {
		require.NotEmpty(t, s.Description)
		kinds[s.Kind] = true
	}
	assert.True(t, kinds[StrategyOverride], "missing override strategy")
	assert.True(t, kinds[StrategyAlias], "missing alias strategy")
	assert.True(t, kinds[StrategyUpgradePath], "missing upgrade-path strategy")
}

func TestResolve_EmptyGraphWarnsNotErrors(t *testing.T) {
	res := Resolve(Graph{Root: Node{Name: "consumer-app"}})
	assert.Empty(t, res.Conflicts)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "malformed graph")
}

func TestResolve_UnparseableRangeSkippedWithWarning(t *testing.T) {
	app := Node{Name: "consumer-app", Version: "1.0.0"}
	g := appGraph([]Requirement{
		{Dependent: app, Package: "core-lib", Range: "not-a-range"},
		{Dependent: app, Package: "core-lib", Range: "^5.0.0"},
	}, map[string][]string{"core-lib": {"5.4.1"}})

	res := Resolve(g)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "5.4.1", res.Selected["core-lib"])
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], `skipping range "not-a-range"`)
}

func TestResolve_NoAdvertisedVersionsProposesLowerBound(t *testing.T) {
	app := Node{Name: "consumer-app", Version: "1.0.0"}
	g := appGraph([]Requirement{
		{Dependent: app, Package: "core-lib", Range: "^5.2.0"},
	}, nil)

	res := Resolve(g)
	assert.Equal(t, "5.2.0", res.Selected["core-lib"])
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "proposing lower bound")
}

func TestResolve_ExactPinAgainstCaret(t *testing.T) {
	app := Node{Name: "consumer-app", Version: "1.0.0"}
	g := appGraph([]Requirement{
		{Dependent: app, Package: "core-lib", Range: "5.2.0"},
		{Dependent: Node{Name: "widgets", Version: "2.1.0"}, Package: "core-lib", Range: "^5.0.0"},
	}, map[string][]string{"core-lib": {"5.0.0", "5.2.0", "5.9.9"}})

	res := Resolve(g)
	require.Empty(t, res.Conflicts)
	assert.Equal(t, "5.2.0", res.Selected["core-lib"])
}

func TestResolve_CycleInGraphTerminates(t *testing.T) {
	// a requires b, b requires a; chains must not loop.
	g := Graph{
		Root: Node{Name: "consumer-app", Version: "1.0.0"},
		Requirements: []Requirement{
			{Dependent: Node{Name: "a", Version: "1.0.0"}, Package: "b", Range: "^1.0.0"},
			{Dependent: Node{Name: "b", Version: "1.0.0"}, Package: "a", Range: "^1.0.0"},
			{Dependent: Node{Name: "b", Version: "1.0.0"}, Package: "core-lib", Range: "^5.0.0"},
			{Dependent: Node{Name: "a", Version: "1.0.0"}, Package: "core-lib", Range: "^6.0.0"},
		},
	}

	res := Resolve(g)
	require.Len(t, res.Conflicts, 1)
	for _, d := range res.Conflicts[0].Demands {
		assert.NotEmpty(t, d.Chain)
		assert.LessOrEqual(t, len(d.Chain), 3)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	app := Node{Name: "consumer-app", Version: "1.0.0"}
	g := appGraph([]Requirement{
		{Dependent: app, Package: "zeta", Range: "^1.0.0"},
		{Dependent: app, Package: "alpha", Range: "^2.0.0"},
		{Dependent: Node{Name: "zeta", Version: "1.0.0"}, Package: "alpha", Range: "^3.0.0"},
	}, nil)

	first := Resolve(g)
	for i := 0; i < 5; i++ {
		again := Resolve(g)
		assert.Equal(t, first, again)
	}
}
