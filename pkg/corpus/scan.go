// Package corpus scans a consumer source corpus to estimate how widely each
// API entity is used. Results feed the prevalence weight of impact scoring.
package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// scanConcurrency bounds the number of files read in parallel.
const scanConcurrency = 8

// Stats holds per-entity occurrence counts over a scanned corpus.
type Stats struct {
	FileCount int            `json:"file_count"`
	FileHits  map[string]int `json:"file_hits"` // entity name -> files containing it
}

// Fraction returns the fraction of sampled files that mention the name.
func (s *Stats) Fraction(name string) float64 {
	if s == nil || s.FileCount == 0 {
		return 0
	}
	return float64(s.FileHits[name]) / float64(s.FileCount)
}

// Scan walks the corpus root and counts, for each name, how many files
// contain it textually. The scan honors ctx cancellation; callers typically
// wrap ctx with a timeout and degrade to default prevalence when Scan returns
// an error.
func Scan(ctx context.Context, root string, names []string, log *zap.Logger) (*Stats, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			base := d.Name()
			if base == "node_modules" || base == "vendor" || base == "testdata" ||
				strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
				if path != root {
					return fs.SkipDir
				}
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus at %s: %w", root, err)
	}

	stats := &Stats{
		FileCount: len(paths),
		FileHits:  make(map[string]int, len(names)),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				// Unreadable corpus files are skipped, not fatal.
				log.Warn("skipping corpus file", zap.String("path", path), zap.Error(readErr))
				return nil
			}
			for _, name := range names {
				if bytes.Contains(data, []byte(name)) {
					mu.Lock()
					stats.FileHits[name]++
					mu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning corpus at %s: %w", root, err)
	}
	return stats, nil
}
