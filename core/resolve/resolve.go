package resolve

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Resolve runs range intersection over every package in the graph. For each
// package it either selects the maximal advertised version satisfying all
// constraints, or emits a Conflict carrying the competing ranges and the
// dependent chain behind each. A graph with no declared requirements is
// malformed input: it yields an empty conflict set plus a warning, never an
// error.
func Resolve(g Graph) Resolution {
	res := Resolution{Selected: make(map[string]string)}

	if len(g.Requirements) == 0 {
		res.Warnings = append(res.Warnings, "malformed graph: no dependents declare a version range")
		return res
	}

	byPackage := make(map[string][]Requirement)
	for _, r := range g.Requirements {
		byPackage[r.Package] = append(byPackage[r.Package], r)
	}

	packages := make([]string, 0, len(byPackage))
	for p := range byPackage {
		packages = append(packages, p)
	}
	sort.Strings(packages)

	for _, pkg := range packages {
		reqs := byPackage[pkg]

		type parsed struct {
			req Requirement
			iv  interval
		}
		var valid []parsed
		for _, r := range reqs {
			iv, err := parseRange(r.Range)
			if err != nil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("skipping range %q on %s declared by %s: %v", r.Range, pkg, r.Dependent, err))
				continue
			}
			valid = append(valid, parsed{req: r, iv: iv})
		}
		if len(valid) == 0 {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("no valid ranges on %s; leaving it unselected", pkg))
			continue
		}

		combined := unbounded()
		for _, p := range valid {
			combined = intersect(combined, p.iv)
		}

		if combined.empty() {
			conflict := Conflict{Package: pkg}
			for _, p := range valid {
				conflict.Demands = append(conflict.Demands, Demand{
					Range: p.req.Range,
					Chain: chainFor(g, p.req.Dependent),
				})
			}
			conflict.Strategies = strategiesFor(conflict)
			res.Conflicts = append(res.Conflicts, conflict)
			res.Selected[pkg] = ""
			continue
		}

		res.Selected[pkg] = selectVersion(g, pkg, combined, &res)
	}

	return res
}

// selectVersion picks the maximal advertised version inside the interval.
// When the graph advertises no versions for the package, the interval's lower
// bound is proposed instead of inventing a maximum.
func selectVersion(g Graph, pkg string, iv interval, res *Resolution) string {
	var best *semver.Version
	for _, raw := range g.Versions[pkg] {
		v, err := semver.NewVersion(raw)
		if err != nil {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("ignoring unparseable advertised version %q of %s", raw, pkg))
			continue
		}
		if !iv.contains(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best != nil {
		return best.String()
	}

	if iv.min != nil {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("no advertised version of %s satisfies its constraints; proposing lower bound", pkg))
		return iv.min.String()
	}

	res.Warnings = append(res.Warnings,
		fmt.Sprintf("package %s is unconstrained and advertises no versions", pkg))
	return ""
}

// chainFor walks the requirement edges from the root down to the dependent.
// Cycles terminate the walk rather than looping.
func chainFor(g Graph, dependent Node) []string {
	var chain []string
	seen := make(map[string]bool)

	current := dependent
	for {
		chain = append([]string{current.String()}, chain...)
		if current.Name == g.Root.Name || seen[current.Name] {
			break
		}
		seen[current.Name] = true

		parent, ok := providerOf(g, current.Name)
		if !ok {
			break
		}
		current = parent
	}
	return chain
}

// providerOf finds the dependent that requires the named package, preferring
// a deterministic (sorted) choice when several exist.
func providerOf(g Graph, name string) (Node, bool) {
	var parents []Node
	for _, r := range g.Requirements {
		if r.Package == name {
			parents = append(parents, r.Dependent)
		}
	}
	if len(parents) == 0 {
		return Node{}, false
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i].String() < parents[j].String() })
	return parents[0], true
}

// strategiesFor proposes the standard ways out of a conflict. None is
// applied automatically.
func strategiesFor(c Conflict) []Strategy {
	strategies := []Strategy{
		{
			Kind:        StrategyOverride,
			Description: fmt.Sprintf("force one version of %s globally, accepting that some dependents run outside their declared range", c.Package),
		},
		{
			Kind:        StrategyAlias,
			Description: fmt.Sprintf("let two versions of %s coexist under distinct identifiers and migrate consumers incrementally", c.Package),
		},
	}

	if len(c.Demands) >= 2 {
		first := c.Demands[0]
		dependent := "the constraining dependent"
		if len(first.Chain) > 0 {
			dependent = first.Chain[len(first.Chain)-1]
		}
		strategies = append(strategies, Strategy{
			Kind:        StrategyUpgradePath,
			Description: fmt.Sprintf("update %s to a release of its dependency that accepts %s %s", dependent, c.Package, c.Demands[1].Range),
		})
	}

	return strategies
}
