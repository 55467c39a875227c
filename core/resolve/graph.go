// Package resolve detects multi-version dependency conflicts and proposes
// resolutions. The resolver never mutates its input graph; it returns a
// resolution proposal.
package resolve

// Node is one (package, version) pair in a consumer's dependency graph.
type Node struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

func (n Node) String() string {
	if n.Version == "" {
		return n.Name
	}
	return n.Name + "@" + n.Version
}

// Requirement is one "requires" edge: Dependent needs Package within Range.
type Requirement struct {
	Dependent Node   `json:"dependent"`
	Package   string `json:"package"`
	Range     string `json:"range"`
}

// Graph is a consumer's resolved dependency graph plus the version ranges
// each dependent declares. Versions advertises the concrete versions known
// to exist per package, used to select a maximal satisfying version.
type Graph struct {
	Root         Node                `json:"root"`
	Requirements []Requirement       `json:"requirements"`
	Versions     map[string][]string `json:"versions,omitempty"`
}

// Demand is one competing constraint on a package, with the dependent chain
// that introduced it, ordered from the root down.
type Demand struct {
	Range string   `json:"range"`
	Chain []string `json:"chain"`
}

// Conflict exists when the constraint ranges on one package have no common
// satisfying version.
type Conflict struct {
	Package    string     `json:"package"`
	Demands    []Demand   `json:"demands"`
	Strategies []Strategy `json:"strategies"`
}

// StrategyKind names a resolution strategy. Strategies are proposed, never
// automatically applied.
type StrategyKind string

const (
	StrategyOverride    StrategyKind = "override"
	StrategyAlias       StrategyKind = "alias"
	StrategyUpgradePath StrategyKind = "upgrade-path"
)

// Strategy is one proposed way out of a conflict.
type Strategy struct {
	Kind        StrategyKind `json:"kind"`
	Description string       `json:"description"`
}

// Resolution is the resolver's output. Selected maps each package to the
// maximal version satisfying every constraint; conflicted packages carry an
// empty string entry.
type Resolution struct {
	Selected  map[string]string `json:"selected"`
	Conflicts []Conflict        `json:"conflicts,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}
