package surface

import (
	"context"

	"github.com/pontis-labs/pontis/core/api"
)

// Driver is the interface each declaration format must implement to supply
// API models to the pipeline.
type Driver interface {
	// FetchSurface downloads the declaration archive for a package version
	// and unpacks it to a local directory. Returns the path to the unpacked
	// surface and a cleanup function that removes the temp directory.
	FetchSurface(ctx context.Context, pkg, version string) (path string, cleanup func(), err error)

	// ExtractModel walks the declaration set rooted at path and returns the
	// normalized API model for that version. Unparseable modules are
	// recovered locally: extraction continues and the failure is recorded in
	// the model's warnings.
	ExtractModel(ctx context.Context, path, pkg, version string) (*api.Model, error)
}

// RepoResolver finds consumer files affected by a package upgrade.
type RepoResolver interface {
	// FindAffectedFiles returns all source files under repoPath that
	// reference the given package.
	FindAffectedFiles(pkg, repoPath string) ([]string, error)
}
