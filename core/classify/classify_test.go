package classify

import (
	"testing"

	"github.com/pontis-labs/pontis/core/api"
	"github.com/pontis-labs/pontis/core/change"
	"github.com/pontis-labs/pontis/pkg/corpus"
)

func publicFunc(name string, params ...api.Parameter) *api.Entity {
	return &api.Entity{
		Name:       name,
		Kind:       api.KindFunction,
		Module:     "mod",
		Visibility: api.VisibilityPublic,
		Signature:  api.Signature{Params: params},
	}
}

func TestSeverity_RuleTable(t *testing.T) {
	deprecated := publicFunc("legacyThing")
	deprecated.Deprecated = true

	internal := publicFunc("helper")
	internal.Visibility = api.VisibilityInternal

	tests := []struct {
		name string
		ch   change.Change
		want change.Severity
	}{
		{
			name: "public removal is critical",
			ch:   change.Change{Kind: change.KindRemoved, Symbol: "formatLabel", Old: publicFunc("formatLabel")},
			want: change.SeverityCritical,
		},
		{
			name: "internal removal is not critical",
			ch:   change.Change{Kind: change.KindRemoved, Symbol: "helper", Old: internal},
			want: change.SeverityMinor,
		},
		{
			name: "deprecated removal is not critical",
			ch:   change.Change{Kind: change.KindRemoved, Symbol: "legacyThing", Old: deprecated},
			want: change.SeverityMinor,
		},
		{
			name: "required param added without default is critical",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "Button",
				Old:    publicFunc("Button"),
				New:    publicFunc("Button", api.Parameter{Name: "onAction", Type: api.Primitive("any")}),
				Deltas: []change.Delta{{Kind: change.DeltaParamAdded, Path: "params.onAction"}},
			},
			want: change.SeverityCritical,
		},
		{
			name: "required param added with default is minor",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "Button",
				Old:    publicFunc("Button"),
				New:    publicFunc("Button", api.Parameter{Name: "size", Type: api.Primitive("string"), Default: `"md"`}),
				Deltas: []change.Delta{{Kind: change.DeltaParamAdded, Path: "params.size"}},
			},
			want: change.SeverityMinor,
		},
		{
			name: "optional became required without default is critical",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "Button",
				Old:    publicFunc("Button", api.Parameter{Name: "onAction", Type: api.Primitive("any"), Optional: true}),
				New:    publicFunc("Button", api.Parameter{Name: "onAction", Type: api.Primitive("any")}),
				Deltas: []change.Delta{{Kind: change.DeltaParamRequired, Path: "params.onAction"}},
			},
			want: change.SeverityCritical,
		},
		{
			name: "rename is major",
			ch: change.Change{
				Kind: change.KindRenamed, Symbol: "formatLabel", NewName: "formatText",
				Old: publicFunc("formatLabel"), New: publicFunc("formatText"),
			},
			want: change.SeverityMajor,
		},
		{
			name: "enum value removal is major",
			ch: change.Change{
				Kind: change.KindSignatureChanged, Symbol: "Button",
				Deltas: []change.Delta{{Kind: change.DeltaEnumValueRemoved, Path: "params.size", Old: "xs"}},
			},
			want: change.SeverityMajor,
		},
		{
			name: "required param removal is major",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "truncate",
				Old:    publicFunc("truncate", api.Parameter{Name: "value", Type: api.Primitive("string")}),
				New:    publicFunc("truncate"),
				Deltas: []change.Delta{{Kind: change.DeltaParamRemoved, Path: "params.value"}},
			},
			want: change.SeverityMajor,
		},
		{
			name: "optional param removal is minor by default",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "truncate",
				Old:    publicFunc("truncate", api.Parameter{Name: "suffix", Type: api.Primitive("string"), Optional: true}),
				New:    publicFunc("truncate"),
				Deltas: []change.Delta{{Kind: change.DeltaParamRemoved, Path: "params.suffix"}},
			},
			want: change.SeverityMinor,
		},
		{
			name: "visibility to internal is major",
			ch: change.Change{
				Kind:   change.KindVisibilityChanged,
				Symbol: "helper",
				Deltas: []change.Delta{{Kind: change.DeltaVisibilityChanged, Path: "visibility", Old: "public", New: "internal"}},
			},
			want: change.SeverityMajor,
		},
		{
			name: "default value change is minor",
			ch: change.Change{
				Kind:   change.KindDefaultChanged,
				Symbol: "Button",
				Deltas: []change.Delta{{Kind: change.DeltaDefaultChanged, Path: "params.size", Old: `"md"`, New: `"sm"`}},
			},
			want: change.SeverityMinor,
		},
		{
			name: "enum value addition is minor",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "Button",
				Deltas: []change.Delta{{Kind: change.DeltaEnumValueAdded, Path: "params.size", New: "lg"}},
			},
			want: change.SeverityMinor,
		},
		{
			name: "deprecated entity otherwise untouched classifies as deprecation",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "legacyThing",
				Old:    deprecated,
				New:    publicFunc("legacyThing"),
			},
			want: change.SeverityDeprecation,
		},
		{
			name: "unmatched change falls back to minor",
			ch: change.Change{
				Kind:   change.KindSignatureChanged,
				Symbol: "mystery",
			},
			want: change.SeverityMinor,
		},
	}

	c := New(DefaultWeights(), nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.ch)
			if got.Severity != tt.want {
				t.Errorf("severity = %q, want %q", got.Severity, tt.want)
			}
		})
	}
}

func TestSeverity_StrictOptionalRemoval(t *testing.T) {
	ch := change.Change{
		Kind:   change.KindSignatureChanged,
		Symbol: "truncate",
		Old:    publicFunc("truncate", api.Parameter{Name: "suffix", Type: api.Primitive("string"), Optional: true}),
		New:    publicFunc("truncate"),
		Deltas: []change.Delta{{Kind: change.DeltaParamRemoved, Path: "params.suffix"}},
	}

	weights := DefaultWeights()
	weights.StrictOptionalRemoval = true
	got := New(weights, nil, nil).Classify(ch)
	if got.Severity != change.SeverityMajor {
		t.Errorf("strict severity = %q, want major", got.Severity)
	}
}

func TestClassify_ImpactScore(t *testing.T) {
	ch := change.Change{Kind: change.KindRemoved, Symbol: "formatLabel", Old: publicFunc("formatLabel")}

	stats := &corpus.Stats{
		FileCount: 100,
		FileHits:  map[string]int{"formatLabel": 60},
	}
	complexity := func(change.Change) float64 { return 1 }

	got := New(DefaultWeights(), stats, complexity).Classify(ch)

	// critical(10) x prevalence(0.60 -> 5) x automated complexity(1) = 50.
	if got.ImpactScore != 50 {
		t.Errorf("impact score = %v, want 50", got.ImpactScore)
	}
	if got.Band != change.BandHigh {
		t.Errorf("band = %q, want %q", got.Band, change.BandHigh)
	}
}

func TestClassify_NoCorpusDegradesToDefault(t *testing.T) {
	ch := change.Change{Kind: change.KindRemoved, Symbol: "formatLabel", Old: publicFunc("formatLabel")}

	got := New(DefaultWeights(), nil, nil).Classify(ch)

	// critical(10) x default prevalence(1) x manual complexity(3) = 30.
	if got.ImpactScore != 30 {
		t.Errorf("impact score = %v, want 30", got.ImpactScore)
	}
	if got.Band != change.BandModerate {
		t.Errorf("band = %q, want %q", got.Band, change.BandModerate)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	ch := change.Change{
		Kind:   change.KindSignatureChanged,
		Symbol: "Button",
		Old:    publicFunc("Button"),
		New:    publicFunc("Button", api.Parameter{Name: "onAction", Type: api.Primitive("any")}),
		Deltas: []change.Delta{{Kind: change.DeltaParamAdded, Path: "params.onAction"}},
	}

	stats := &corpus.Stats{FileCount: 10, FileHits: map[string]int{"Button": 3}}
	c := New(DefaultWeights(), stats, nil)

	first := c.Classify(ch)
	for i := 0; i < 5; i++ {
		again := c.Classify(ch)
		if again.Severity != first.Severity || again.ImpactScore != first.ImpactScore || again.Band != first.Band {
			t.Fatalf("classification changed across runs: %+v vs %+v", first, again)
		}
	}
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	changes := []change.Change{
		{Kind: change.KindRemoved, Symbol: "zeta", Old: publicFunc("zeta")},
		{Kind: change.KindRemoved, Symbol: "alpha", Old: publicFunc("alpha")},
	}
	out := New(DefaultWeights(), nil, nil).ClassifyAll(changes)
	if len(out) != 2 || out[0].Symbol != "zeta" || out[1].Symbol != "alpha" {
		t.Errorf("ClassifyAll reordered input: %+v", out)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{150, change.BandExtremelyHigh},
		{100, change.BandExtremelyHigh},
		{99.9, change.BandHigh},
		{50, change.BandHigh},
		{20, change.BandModerate},
		{19.9, change.BandLow},
		{0, change.BandLow},
	}
	for _, tt := range tests {
		if got := change.BandFor(tt.score); got != tt.want {
			t.Errorf("BandFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
