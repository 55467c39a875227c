package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/semver"

	"github.com/pontis-labs/pontis/core/api"
	"github.com/pontis-labs/pontis/core/change"
	"github.com/pontis-labs/pontis/core/classify"
	"github.com/pontis-labs/pontis/core/cli"
	"github.com/pontis-labs/pontis/core/diff"
	"github.com/pontis-labs/pontis/core/plan"
	"github.com/pontis-labs/pontis/core/resolve"
	"github.com/pontis-labs/pontis/core/transform"
	"github.com/pontis-labs/pontis/drivers/decl"
	"github.com/pontis-labs/pontis/pkg/corpus"
	"github.com/pontis-labs/pontis/pkg/manifest"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	defer logger.Sync()

	driver := decl.NewDriver(logger)
	scanCache := corpus.NewCache()

	runDiff := func(ctx context.Context, opts cli.DiffOptions) error {
		oldModel, err := driver.ExtractModel(ctx, opts.OldDir, opts.Package, opts.OldVersion)
		if err != nil {
			return fmt.Errorf("extracting old surface: %w", err)
		}
		newModel, err := driver.ExtractModel(ctx, opts.NewDir, opts.Package, opts.NewVersion)
		if err != nil {
			return fmt.Errorf("extracting new surface: %w", err)
		}

		hints, err := loadHints(opts.Hints)
		if err != nil {
			return err
		}

		changes := diff.Diff(oldModel, newModel, diff.Options{Hints: hints})
		return emitJSON(struct {
			Package  string          `json:"package"`
			Changes  []change.Change `json:"changes"`
			Warnings []string        `json:"warnings,omitempty"`
		}{
			Package:  opts.Package,
			Changes:  changes,
			Warnings: append(oldModel.Warnings, newModel.Warnings...),
		})
	}

	runResolve := func(ctx context.Context, opts cli.ResolveOptions) error {
		m, err := loadManifest(opts)
		if err != nil {
			return err
		}

		res := resolve.Resolve(m.Graph())
		res.Warnings = append(m.Warnings, res.Warnings...)
		return emitJSON(res)
	}

	runPlan := func(ctx context.Context, opts cli.PlanOptions) error {
		m, err := manifest.LoadDir(opts.Repo)
		if err != nil {
			return err
		}

		from := opts.From
		if from == "" {
			from, err = m.InstalledVersion(opts.Package)
			if err != nil {
				return err
			}
		}
		if from == opts.To {
			return fmt.Errorf("package %s is already at %s", opts.Package, opts.To)
		}
		warnIfDowngrade(logger, opts.Package, from, opts.To)

		oldModel, newModel, cleanup, err := loadSurfaces(ctx, driver, opts.Package, from, opts.To, opts.OldDir, opts.NewDir, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		hints, err := loadHints(opts.Hints)
		if err != nil {
			return err
		}
		changes := diff.Diff(oldModel, newModel, diff.Options{Hints: hints})

		catalog, err := loadCatalog(opts.Catalog)
		if err != nil {
			return err
		}

		weights := classify.DefaultWeights()
		if opts.Weights != "" {
			weights, err = classify.LoadWeights(opts.Weights)
			if err != nil {
				return err
			}
		}

		stats := scanCorpus(ctx, logger, scanCache, opts, from, changes)

		classifier := classify.New(weights, stats, func(ch change.Change) float64 {
			return catalog.ComplexityFor(ch, weights.ComplexityManual)
		})
		classified := classifier.ClassifyAll(changes)

		gen, genErr := transform.Generate(classified, catalog)
		if genErr != nil {
			// Ambiguous catalog matches abort only the affected changes;
			// the rest of the plan still builds.
			logger.Error("catalog has ambiguous rules", zap.Error(genErr))
		}

		resolution := resolve.Resolve(m.Graph())

		migrationPlan := plan.Build(opts.Package, from, opts.To, gen, resolution.Conflicts)
		return emitJSON(struct {
			Plan     plan.Plan                 `json:"plan"`
			Manual   []change.ClassifiedChange `json:"manual_only,omitempty"`
			Selected map[string]string         `json:"selected_versions"`
			Warnings []string                  `json:"warnings,omitempty"`
		}{
			Plan:     migrationPlan,
			Manual:   gen.ManualOnly,
			Selected: resolution.Selected,
			Warnings: planWarnings(m, oldModel, newModel, resolution),
		})
	}

	runApply := func(ctx context.Context, opts cli.ApplyOptions) error {
		m, err := manifest.LoadDir(opts.Repo)
		if err != nil {
			return err
		}

		from := opts.From
		if from == "" {
			from, err = m.InstalledVersion(opts.Package)
			if err != nil {
				return err
			}
		}

		oldModel, newModel, cleanup, err := loadSurfaces(ctx, driver, opts.Package, from, opts.To, opts.OldDir, opts.NewDir, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		hints, err := loadHints(opts.Hints)
		if err != nil {
			return err
		}
		changes := diff.Diff(oldModel, newModel, diff.Options{Hints: hints})

		catalog, err := transform.LoadCatalog(opts.Catalog)
		if err != nil {
			return err
		}

		weights := classify.DefaultWeights()
		classifier := classify.New(weights, nil, func(ch change.Change) float64 {
			return catalog.ComplexityFor(ch, weights.ComplexityManual)
		})

		gen, genErr := transform.Generate(classifier.ClassifyAll(changes), catalog)
		if genErr != nil {
			logger.Error("catalog has ambiguous rules", zap.Error(genErr))
		}

		files, err := decl.RepoResolver{}.FindAffectedFiles(opts.Package, opts.Repo)
		if err != nil {
			return err
		}
		logger.Info("applying transformations",
			zap.Int("transformations", len(gen.Transformations)),
			zap.Int("files", len(files)),
			zap.Bool("dry_run", opts.DryRun))

		applier := transform.NewApplier(logger, opts.DryRun)
		result, err := applier.ApplyAll(ctx, gen.Transformations, files)
		if err != nil {
			return err
		}
		return emitJSON(result)
	}

	root := cli.NewRootCmd(version)
	root.AddCommand(
		cli.NewDiffCmd(runDiff),
		cli.NewResolveCmd(runResolve),
		cli.NewPlanCmd(runPlan),
		cli.NewApplyCmd(runApply),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger. PONTIS_DEBUG=1 raises the level.
func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	if os.Getenv("PONTIS_DEBUG") != "" {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// loadSurfaces yields the two API models, fetching declaration archives from
// the registry unless local directories were supplied.
func loadSurfaces(ctx context.Context, driver *decl.Driver, pkg, from, to, oldDir, newDir string, logger *zap.Logger) (*api.Model, *api.Model, func(), error) {
	cleanup := func() {}

	if oldDir == "" {
		logger.Info("fetching declaration archive", zap.String("package", pkg), zap.String("version", from))
		fetchedOld, oldCleanup, err := driver.FetchSurface(ctx, pkg, from)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("fetching %s@%s: %w", pkg, from, err)
		}

		logger.Info("fetching declaration archive", zap.String("package", pkg), zap.String("version", to))
		fetchedNew, newCleanup, err := driver.FetchSurface(ctx, pkg, to)
		if err != nil {
			oldCleanup()
			return nil, nil, nil, fmt.Errorf("fetching %s@%s: %w", pkg, to, err)
		}

		oldDir, newDir = fetchedOld, fetchedNew
		cleanup = func() {
			newCleanup()
			oldCleanup()
		}
	}

	oldModel, err := driver.ExtractModel(ctx, oldDir, pkg, from)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("extracting %s@%s: %w", pkg, from, err)
	}
	newModel, err := driver.ExtractModel(ctx, newDir, pkg, to)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("extracting %s@%s: %w", pkg, to, err)
	}

	return oldModel, newModel, cleanup, nil
}

// scanCorpus runs the prevalence scan under the caller's timeout budget. A
// scan that fails or times out degrades to default prevalence rather than
// blocking the pipeline.
func scanCorpus(ctx context.Context, logger *zap.Logger, cache *corpus.Cache, opts cli.PlanOptions, from string, changes []change.Change) *corpus.Stats {
	if opts.Corpus == "" {
		return nil
	}

	key := corpus.Key{Package: opts.Package, Version: from}
	if stats, ok := cache.Get(key); ok {
		return stats
	}

	names := make([]string, 0, len(changes))
	seen := make(map[string]bool, len(changes))
	for _, ch := range changes {
		if !seen[ch.Symbol] {
			seen[ch.Symbol] = true
			names = append(names, ch.Symbol)
		}
	}

	scanCtx, cancel := context.WithTimeout(ctx, opts.CorpusTimeout)
	defer cancel()

	stats, err := corpus.Scan(scanCtx, opts.Corpus, names, logger)
	if err != nil {
		logger.Warn("corpus scan degraded to default prevalence", zap.Error(err))
		return nil
	}

	cache.Put(key, stats)
	return stats
}

// loadManifest reads the manifest named by --manifest or discovered in --repo.
func loadManifest(opts cli.ResolveOptions) (manifest.Manifest, error) {
	if opts.Manifest != "" {
		return manifest.Load(opts.Manifest)
	}
	return manifest.LoadDir(opts.Repo)
}

func loadHints(path string) ([]diff.RenameHint, error) {
	if path == "" {
		return nil, nil
	}
	return diff.LoadHints(path)
}

// loadCatalog reads the rule catalog; without one every change is manual.
func loadCatalog(path string) (transform.Catalog, error) {
	if path == "" {
		return transform.Catalog{}, nil
	}
	return transform.LoadCatalog(path)
}

// warnIfDowngrade flags a target version older than the current one.
func warnIfDowngrade(logger *zap.Logger, pkg, from, to string) {
	canonFrom, canonTo := canonical(from), canonical(to)
	if semver.IsValid(canonFrom) && semver.IsValid(canonTo) && semver.Compare(canonTo, canonFrom) < 0 {
		logger.Warn("target version is older than current version",
			zap.String("package", pkg),
			zap.String("from", from),
			zap.String("to", to))
	}
}

func canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// planWarnings aggregates warnings from every pipeline stage into one list.
func planWarnings(m manifest.Manifest, oldModel, newModel *api.Model, res resolve.Resolution) []string {
	var out []string
	out = append(out, m.Warnings...)
	out = append(out, oldModel.Warnings...)
	out = append(out, newModel.Warnings...)
	out = append(out, res.Warnings...)
	return out
}

// emitJSON writes structured output to stdout for downstream collaborators.
func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
