package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pontis-labs/pontis/core/change"
)

// Bucket maps a minimum corpus fraction to a prevalence weight. Buckets are
// evaluated in descending min_fraction order; the first bucket whose floor is
// met wins.
type Bucket struct {
	MinFraction float64 `yaml:"min_fraction"`
	Weight      float64 `yaml:"weight"`
}

// Weights holds the tunable scoring constants. The formula structure
// (severity x prevalence x complexity) is fixed; the literal constants are
// configuration.
type Weights struct {
	Severity              map[change.Severity]float64 `yaml:"severity_weights"`
	Prevalence            []Bucket                    `yaml:"prevalence_buckets"`
	DefaultPrevalence     float64                     `yaml:"default_prevalence"`
	ComplexityAutomated   float64                     `yaml:"complexity_automated"`
	ComplexityManual      float64                     `yaml:"complexity_manual"`
	StrictOptionalRemoval bool                        `yaml:"strict_optional_removal"`
}

// DefaultWeights returns the documented default rubric.
func DefaultWeights() Weights {
	return Weights{
		Severity: map[change.Severity]float64{
			change.SeverityCritical:    10,
			change.SeverityMajor:       7,
			change.SeverityMinor:       3,
			change.SeverityDeprecation: 1,
		},
		Prevalence: []Bucket{
			{MinFraction: 0.50, Weight: 5},
			{MinFraction: 0.20, Weight: 3},
			{MinFraction: 0.05, Weight: 2},
			{MinFraction: 0, Weight: 1},
		},
		DefaultPrevalence:   1,
		ComplexityAutomated: 1,
		ComplexityManual:    3,
	}
}

// LoadWeights reads a YAML weights file over the defaults, so a partial file
// overrides only what it names.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("reading weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parsing weights file %s: %w", path, err)
	}
	return w, nil
}

// prevalenceWeight buckets a corpus fraction. A missing corpus degrades to
// the default weight.
func (w Weights) prevalenceWeight(fraction float64, haveCorpus bool) float64 {
	if !haveCorpus {
		return w.DefaultPrevalence
	}
	best := w.DefaultPrevalence
	bestFloor := -1.0
	for _, b := range w.Prevalence {
		if fraction > b.MinFraction && b.MinFraction > bestFloor {
			best = b.Weight
			bestFloor = b.MinFraction
		}
	}
	if bestFloor < 0 {
		// Fraction of zero still lands in the lowest bucket when one exists.
		for _, b := range w.Prevalence {
			if b.MinFraction == 0 {
				return b.Weight
			}
		}
		return w.DefaultPrevalence
	}
	return best
}
