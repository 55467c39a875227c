package transform

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pontis-labs/pontis/core/change"
)

// applyConcurrency bounds the number of files rewritten in parallel.
// Different files are independent; edits to one file are serialized by a
// per-path lock.
const applyConcurrency = 8

// Edit records one transformation applied to one file.
type Edit struct {
	Transformation string `json:"transformation"`
	Path           string `json:"path"`
}

// Failure records a transformation that could not be applied to a file.
type Failure struct {
	Transformation string `json:"transformation"`
	Path           string `json:"path"`
	Reason         string `json:"reason"`
}

// FileDiff is a unified dry-run diff for one file.
type FileDiff struct {
	Path string `json:"path"`
	Diff string `json:"diff"`
}

// ApplyResult reports which transformations edited files, which matched no
// file at all (their changes remain manual-only), and which failed.
type ApplyResult struct {
	Applied []Edit                    `json:"applied"`
	Skipped []change.ClassifiedChange `json:"skipped,omitempty"`
	Failed  []Failure                 `json:"failed,omitempty"`
	Diffs   []FileDiff                `json:"diffs,omitempty"`
}

// Applier rewrites a consumer source tree. Concurrent application to
// different files is safe; a single-writer-per-file discipline serializes
// edits to the same path.
type Applier struct {
	log    *zap.Logger
	dryRun bool
	locks  sync.Map // path -> *sync.Mutex
}

// NewApplier creates an Applier. In dry-run mode nothing is written; unified
// diffs are collected instead.
func NewApplier(log *zap.Logger, dryRun bool) *Applier {
	return &Applier{log: log, dryRun: dryRun}
}

func (a *Applier) lockFor(path string) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ApplyAll runs every transformation over every file. Failures are scoped to
// the (transformation, file) pair; only context cancellation aborts the run.
func (a *Applier) ApplyAll(ctx context.Context, transforms []*Transformation, files []string) (ApplyResult, error) {
	var (
		mu      sync.Mutex
		result  ApplyResult
		matched = make(map[string]int, len(transforms))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(applyConcurrency)

	for _, path := range files {
		path := path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			edits, failures, diff, counts := a.applyFile(path, transforms)

			mu.Lock()
			result.Applied = append(result.Applied, edits...)
			result.Failed = append(result.Failed, failures...)
			if diff != "" {
				result.Diffs = append(result.Diffs, FileDiff{Path: path, Diff: diff})
			}
			for name, n := range counts {
				matched[name] += n
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ApplyResult{}, err
	}

	// Transformations whose precondition matched no file are skipped; their
	// changes stay in the plan as manual-only.
	for _, t := range transforms {
		if matched[t.Name] == 0 {
			a.log.Info("transformation matched no files",
				zap.String("transformation", t.Name),
				zap.String("symbol", t.Change.Key().String()))
			result.Skipped = append(result.Skipped, t.Change)
		}
	}

	sort.Slice(result.Applied, func(i, j int) bool {
		if result.Applied[i].Path != result.Applied[j].Path {
			return result.Applied[i].Path < result.Applied[j].Path
		}
		return result.Applied[i].Transformation < result.Applied[j].Transformation
	})
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].Path < result.Failed[j].Path })
	sort.Slice(result.Diffs, func(i, j int) bool { return result.Diffs[i].Path < result.Diffs[j].Path })

	return result, nil
}

// applyFile rewrites a single file under its path lock, running each
// transformation in order over the accumulating source.
func (a *Applier) applyFile(path string, transforms []*Transformation) (edits []Edit, failures []Failure, diff string, counts map[string]int) {
	lock := a.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	counts = make(map[string]int)

	original, err := os.ReadFile(path)
	if err != nil {
		failures = append(failures, Failure{Path: path, Reason: fmt.Sprintf("reading file: %v", err)})
		return edits, failures, "", counts
	}

	src := original
	for _, t := range transforms {
		if err := t.CheckPrecondition(path, src); err != nil {
			a.log.Debug("transformation passed over file", zap.Error(err))
			continue
		}
		counts[t.Name]++

		if err := t.Verify(src); err != nil {
			failures = append(failures, Failure{
				Transformation: t.Name,
				Path:           path,
				Reason:         err.Error(),
			})
			continue
		}

		src = t.Apply(src)
		edits = append(edits, Edit{Transformation: t.Name, Path: path})
	}

	if len(edits) == 0 {
		return edits, failures, "", counts
	}

	if a.dryRun {
		d, diffErr := unifiedDiff(path, original, src)
		if diffErr != nil {
			failures = append(failures, Failure{Path: path, Reason: fmt.Sprintf("rendering diff: %v", diffErr)})
			return nil, failures, "", counts
		}
		return edits, failures, d, counts
	}

	info, err := os.Stat(path)
	if err != nil {
		failures = append(failures, Failure{Path: path, Reason: fmt.Sprintf("stat before write: %v", err)})
		return nil, failures, "", counts
	}
	if err := os.WriteFile(path, src, info.Mode().Perm()); err != nil {
		failures = append(failures, Failure{Path: path, Reason: fmt.Sprintf("writing file: %v", err)})
		return nil, failures, "", counts
	}

	a.log.Debug("rewrote file", zap.String("path", path), zap.Int("edits", len(edits)))
	return edits, failures, "", counts
}
