// Package decl implements the declaration-set surface driver: YAML
// declaration files describe a component library's public exports, and the
// driver turns two versions of them into diffable API models.
package decl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pontis-labs/pontis/core/api"
	"github.com/pontis-labs/pontis/core/surface"
	"github.com/pontis-labs/pontis/pkg/archive"
	"github.com/pontis-labs/pontis/pkg/registry"
)

var _ surface.Driver = (*Driver)(nil)

// Driver implements surface.Driver for YAML declaration sets.
type Driver struct {
	client    *registry.Client
	extractor *Extractor
}

// NewDriver creates a Driver with a default registry client.
func NewDriver(log *zap.Logger) *Driver {
	return &Driver{
		client:    registry.NewClient(log),
		extractor: NewExtractor(log),
	}
}

// FetchSurface downloads the declaration archive from the registry chain and
// extracts it to a temp directory.
func (d *Driver) FetchSurface(ctx context.Context, pkg, version string) (string, func(), error) {
	data, err := d.client.DownloadArchive(ctx, pkg, version)
	if err != nil {
		return "", nil, fmt.Errorf("downloading archive for %s@%s: %w", pkg, version, err)
	}

	dir, cleanup, err := archive.ExtractZip(data, version)
	if err != nil {
		return "", nil, fmt.Errorf("extracting archive for %s@%s: %w", pkg, version, err)
	}

	return dir, cleanup, nil
}

// ExtractModel parses the declaration set rooted at path into an API model.
func (d *Driver) ExtractModel(ctx context.Context, path, pkg, version string) (*api.Model, error) {
	return d.extractor.Extract(ctx, path, pkg, version)
}
