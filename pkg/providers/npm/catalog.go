package npm

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/libman/pkg/integrations"
	api "github.com/matzehuels/libman/pkg/integrations/npm"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/providers"
	"github.com/matzehuels/libman/pkg/semver"
)

// Catalog resolves npm packages through the registry and lists their files
// through a CDN.
type Catalog struct {
	base     *providers.Base
	registry *api.Client
	cdn      api.CDN
}

// Search queries the registry. The registry cannot list everything, so an
// empty term yields no groups.
func (c *Catalog) Search(ctx context.Context, term string, maxHits int) ([]library.Group, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	results, err := c.registry.Search(ctx, term, maxHits)
	if err != nil {
		return nil, err
	}
	groups := make([]library.Group, 0, len(results))
	for _, r := range results {
		groups = append(groups, library.Group{DisplayName: r.Name, Description: r.Description, LatestVersion: r.Version})
	}
	return groups, nil
}

// GetLibrary resolves the file list of name@version from the CDN.
func (c *Catalog) GetLibrary(ctx context.Context, name, version string) (*library.Library, error) {
	id := name + "@" + version
	if strings.TrimSpace(name) == "" || strings.TrimSpace(version) == "" {
		return nil, c.invalid(id, nil)
	}
	if err := providers.ValidateCacheKey(name, version); err != nil {
		return nil, c.invalid(id, err)
	}
	path := c.base.MetadataPath(name, version)
	data, err := providers.LoadMetadata(ctx, c.base.Service(), providers.CacheFirst, c.cdn.FilesURL(name, version), path)
	if err != nil {
		return nil, c.lookupError(err, id)
	}
	files, err := c.cdn.DecodeFiles(data)
	if err != nil {
		providers.DiscardMetadata(path)
		return nil, c.invalid(id, err)
	}
	lib := &library.Library{Name: name, ProviderID: c.base.ID(), Version: version, Files: make(map[string]bool, len(files))}
	for _, f := range files {
		lib.Files[f] = false
	}
	return lib, nil
}

// Versions returns every published version of name, newest first.
func (c *Catalog) Versions(ctx context.Context, name string) ([]string, error) {
	p, err := c.packument(ctx, name)
	if err != nil {
		return nil, err
	}
	return semver.SortDescending(slices.Collect(maps.Keys(p.Versions))), nil
}

// GetLatestVersion returns the newest version of name, or "" when the
// registry cannot answer.
func (c *Catalog) GetLatestVersion(ctx context.Context, name string, includePreReleases bool) (string, error) {
	versions, err := c.Versions(ctx, name)
	if err != nil {
		if library.IsCancellation(err) {
			return "", err
		}
		c.base.Host().Logger().Debug("latest version lookup failed", "library", name, "err", err)
		return "", nil
	}
	return semver.Latest(versions, includePreReleases), nil
}

// CompletionSet offers package names before the version "@" (scoped names
// keep their leading "@") and versions after it.
func (c *Catalog) CompletionSet(ctx context.Context, libraryIDStart string, caret int) (library.CompletionSet, error) {
	return providers.VersionedCompletionSet(ctx, c, libraryIDStart, caret)
}

func (c *Catalog) packument(ctx context.Context, name string) (*api.Packument, error) {
	if strings.TrimSpace(name) == "" {
		return nil, c.invalid(name, nil)
	}
	if err := providers.ValidateCacheKey(name, ""); err != nil {
		return nil, c.invalid(name, err)
	}
	path := c.base.MetadataPath(name, "")
	data, err := providers.LoadMetadata(ctx, c.base.Service(), providers.LiveFirst, c.registry.PackumentURL(name), path)
	if err != nil {
		return nil, c.lookupError(err, name)
	}
	p, err := api.DecodePackument(data)
	if err != nil {
		providers.DiscardMetadata(path)
		return nil, c.invalid(name, err)
	}
	return p, nil
}

func (c *Catalog) invalid(id string, err error) error {
	return &library.InvalidLibraryError{LibraryID: id, ProviderID: c.base.ID(), Err: err}
}

func (c *Catalog) lookupError(err error, id string) error {
	if library.IsCancellation(err) {
		return err
	}
	if errors.Is(err, integrations.ErrNotFound) {
		return c.invalid(id, err)
	}
	return err
}

var _ library.Catalog = (*Catalog)(nil)
