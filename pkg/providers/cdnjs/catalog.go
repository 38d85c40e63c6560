package cdnjs

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/libman/pkg/integrations"
	api "github.com/matzehuels/libman/pkg/integrations/cdnjs"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/providers"
	"github.com/matzehuels/libman/pkg/semver"
)

// Search scores.
const (
	scoreExact     = 50
	scorePrefix    = 20
	scoreSubstring = 1
)

// Catalog answers queries against the cdnjs index.
type Catalog struct {
	base   *providers.Base
	client *api.Client
}

// Search ranks index entries against term: an exact normalized match beats
// a prefix match, which beats a substring match. Prefix matches closer in
// length to the name rank higher. An empty term returns the first maxHits
// entries of the index.
func (c *Catalog) Search(ctx context.Context, term string, maxHits int) ([]library.Group, error) {
	index, err := c.client.Index(ctx, false)
	if err != nil {
		return nil, err
	}
	if maxHits <= 0 {
		maxHits = len(index)
	}

	type hit struct {
		entry api.IndexEntry
		score int
	}
	var hits []hit
	needle := integrations.NormalizeName(term)
	for _, e := range index {
		s := score(integrations.NormalizeName(e.Name), needle)
		if s > 0 {
			hits = append(hits, hit{e, s})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(b.score, a.score) })

	groups := make([]library.Group, 0, min(maxHits, len(hits)))
	for _, h := range hits[:min(maxHits, len(hits))] {
		groups = append(groups, library.Group{
			DisplayName:   h.entry.Name,
			Description:   h.entry.Description,
			LatestVersion: h.entry.Version,
		})
	}
	return groups, nil
}

// score rates how well name matches needle; 0 is no match. An empty needle
// matches everything equally.
func score(name, needle string) int {
	switch {
	case needle == "":
		return scoreSubstring
	case name == needle:
		return scoreExact
	case strings.HasPrefix(name, needle):
		return scorePrefix + (scoreExact-scorePrefix-1)*len(needle)/len(name)
	case strings.Contains(name, needle):
		return scoreSubstring
	default:
		return 0
	}
}

// GetLibrary resolves the file list of name@version.
func (c *Catalog) GetLibrary(ctx context.Context, name, version string) (*library.Library, error) {
	id := name + "@" + version
	if strings.TrimSpace(name) == "" || strings.TrimSpace(version) == "" {
		return nil, &library.InvalidLibraryError{LibraryID: id, ProviderID: ID}
	}
	if err := providers.ValidateCacheKey(name, version); err != nil {
		return nil, &library.InvalidLibraryError{LibraryID: id, ProviderID: ID, Err: err}
	}

	path := c.base.MetadataPath(name, version)
	data, err := providers.LoadMetadata(ctx, c.base.Service(), providers.CacheFirst, c.client.VersionURL(name, version), path)
	if err != nil {
		return nil, c.lookupError(err, id)
	}
	info, err := api.DecodeVersion(data)
	if err != nil {
		providers.DiscardMetadata(path)
		return nil, &library.InvalidLibraryError{LibraryID: id, ProviderID: ID, Err: err}
	}

	files := make(map[string]bool, len(info.Files))
	for _, f := range info.Files {
		files[strings.TrimLeft(f, "/")] = false
	}
	return &library.Library{Name: name, ProviderID: ID, Version: version, Files: files}, nil
}

// Versions returns every published version of name, newest first.
func (c *Catalog) Versions(ctx context.Context, name string) ([]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &library.InvalidLibraryError{LibraryID: name, ProviderID: ID}
	}
	if err := providers.ValidateCacheKey(name, ""); err != nil {
		return nil, &library.InvalidLibraryError{LibraryID: name, ProviderID: ID, Err: err}
	}
	path := c.base.MetadataPath(name, "")
	data, err := providers.LoadMetadata(ctx, c.base.Service(), providers.LiveFirst, c.client.LibraryURL(name), path)
	if err != nil {
		return nil, c.lookupError(err, name)
	}
	info, err := api.DecodeLibrary(data)
	if err != nil {
		providers.DiscardMetadata(path)
		return nil, &library.InvalidLibraryError{LibraryID: name, ProviderID: ID, Err: err}
	}
	versions := info.Versions
	if len(versions) == 0 && info.Version != "" {
		versions = []string{info.Version}
	}
	return semver.SortDescending(versions), nil
}

// GetLatestVersion returns the newest (stable unless includePreReleases)
// version of name, or "" when cdnjs cannot answer.
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

// CompletionSet offers names before the "@" and versions after it.
func (c *Catalog) CompletionSet(ctx context.Context, libraryIDStart string, caret int) (library.CompletionSet, error) {
	return providers.VersionedCompletionSet(ctx, c, libraryIDStart, caret)
}

func (c *Catalog) lookupError(err error, id string) error {
	if library.IsCancellation(err) {
		return err
	}
	if api.IsNotFound(err) {
		return &library.InvalidLibraryError{LibraryID: id, ProviderID: ID, Err: err}
	}
	return err
}

var _ library.Catalog = (*Catalog)(nil)
