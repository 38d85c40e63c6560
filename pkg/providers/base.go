package providers

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/libman/pkg/cache"
	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/naming"
)

// FileURLFunc returns the download URL of one library file.
type FileURLFunc func(name, version, file string) string

// Base implements library.Provider for CDN-backed providers. Concrete
// providers embed it and supply their catalog and download URL layout.
type Base struct {
	id         string
	host       library.Host
	scheme     naming.Scheme
	service    *cache.Service
	fileURL    FileURLFunc
	newCatalog func() library.Catalog

	once    sync.Once
	catalog library.Catalog
}

// NewBase creates the shared provider core. newCatalog runs once, on the
// first call to Catalog.
func NewBase(id string, host library.Host, scheme naming.Scheme, service *cache.Service, fileURL FileURLFunc, newCatalog func() library.Catalog) *Base {
	return &Base{
		id:         id,
		host:       host,
		scheme:     scheme,
		service:    service,
		fileURL:    fileURL,
		newCatalog: newCatalog,
	}
}

func (b *Base) ID() string                  { return b.id }
func (b *Base) NamingScheme() naming.Scheme { return b.scheme }
func (b *Base) Host() library.Host          { return b.host }
func (b *Base) Service() *cache.Service     { return b.service }

// Catalog returns the provider's catalog, creating it on first use.
func (b *Base) Catalog() library.Catalog {
	b.once.Do(func() { b.catalog = b.newCatalog() })
	return b.catalog
}

// SuggestedDestination is the library name without the npm scope marker.
func (b *Base) SuggestedDestination(lib *library.Library) string {
	if lib == nil {
		return ""
	}
	return strings.TrimPrefix(lib.Name, "@")
}

// LibraryCacheDir is where the files of name@version are cached.
func (b *Base) LibraryCacheDir(name, version string) string {
	return filepath.Join(b.host.CacheDirectory(), b.id, filepath.FromSlash(name), version)
}

// CachePath is the cache file of one library file.
func (b *Base) CachePath(name, version, file string) string {
	return filepath.Join(b.LibraryCacheDir(name, version), filepath.FromSlash(file))
}

// ResolveVersion expands the "latest" alias and rejects a missing version.
func (b *Base) ResolveVersion(ctx context.Context, desired library.InstallationState) (string, error) {
	v := strings.TrimSpace(desired.Version)
	if v == "" {
		return "", &library.InvalidLibraryError{LibraryID: desired.Name, ProviderID: b.id, Err: errors.New("no version specified")}
	}
	if !library.IsLatestTag(v) {
		return v, nil
	}
	latest, err := b.Catalog().GetLatestVersion(ctx, desired.Name, false)
	if err != nil {
		return "", err
	}
	if latest == "" {
		return "", &library.InvalidLibraryError{LibraryID: desired.DisplayID(), ProviderID: b.id, Err: errors.New("latest version unknown")}
	}
	return latest, nil
}

// GoalState resolves desired through the catalog and maps every selected
// file to its cache path. The returned state carries the concrete version
// when desired asked for "latest".
func (b *Base) GoalState(ctx context.Context, desired library.InstallationState) library.OperationResult[*library.GoalState] {
	if ctx.Err() != nil {
		return library.Cancelled[*library.GoalState](nil)
	}
	if err := liberrors.ValidateLibraryName(desired.Name); err != nil {
		return library.Fail[*library.GoalState](nil, liberrors.From(err))
	}
	if strings.TrimSpace(desired.DestinationPath) == "" && len(desired.FileMappings) == 0 {
		return library.Fail[*library.GoalState](nil, liberrors.DestinationNotSpecified(desired.DisplayID()))
	}

	version, err := b.ResolveVersion(ctx, desired)
	if err != nil {
		return resolveFailure[*library.GoalState](nil, err, desired.DisplayID(), b.id)
	}
	lib, err := b.Catalog().GetLibrary(ctx, desired.Name, version)
	if err != nil {
		return resolveFailure[*library.GoalState](nil, err, b.scheme.LibraryID(desired.Name, version), b.id)
	}

	state := desired.Clone()
	state.Version = lib.Version
	plan, fatal := PlanFiles(b.host.WorkingDirectory(), state, lib)
	if fatal != nil {
		return library.Fail[*library.GoalState](nil, fatal)
	}

	goal := &library.GoalState{State: state, InstalledFiles: make(map[string]string, len(plan.Files))}
	for dest, rel := range plan.Files {
		goal.InstalledFiles[dest] = b.CachePath(lib.Name, lib.Version, rel)
	}
	return library.OperationResult[*library.GoalState]{Value: goal, Errors: plan.Errors}
}

// Install plans desired, downloads missing cache files and copies every
// file that is not already up to date into place.
func (b *Base) Install(ctx context.Context, desired library.InstallationState) library.OperationResult[library.InstallationState] {
	goal := b.GoalState(ctx, desired)
	if goal.Cancelled {
		return library.Cancelled(desired)
	}
	if goal.Value == nil {
		return library.Fail(desired, goal.Errors...)
	}

	if IsGoalStateUpToDate(goal.Value) {
		return library.OperationResult[library.InstallationState]{
			Value: goal.Value.State, Errors: goal.Errors, UpToDate: true,
		}
	}

	if err := b.service.RefreshCache(ctx, b.cacheEntries(goal.Value)); err != nil {
		return resolveFailure(desired, err, desired.DisplayID(), b.id)
	}

	res := WriteGoalState(ctx, b.host, goal.Value, openFile)
	res.Errors = append(goal.Errors, res.Errors...)
	return res
}

func (b *Base) cacheEntries(goal *library.GoalState) []cache.Entry {
	prefix := b.LibraryCacheDir(goal.State.Name, goal.State.Version) + string(filepath.Separator)
	entries := make([]cache.Entry, 0, len(goal.InstalledFiles))
	for _, dest := range goal.Destinations() {
		src := goal.InstalledFiles[dest]
		rel := filepath.ToSlash(strings.TrimPrefix(src, prefix))
		entries = append(entries, cache.Entry{
			URL:  b.fileURL(goal.State.Name, goal.State.Version, rel),
			Path: src,
		})
	}
	return entries
}

func openFile(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// resolveFailure maps catalog and cache errors onto a result: cancellation
// becomes Cancelled, download failures LIB014, and anything else the
// catalog could not answer LIB002.
func resolveFailure[T any](v T, err error, libraryID, providerID string) library.OperationResult[T] {
	if library.IsCancellation(err) {
		return library.Cancelled(v)
	}
	return library.Fail(v, ResolveError(err, libraryID, providerID))
}

// ResolveError converts an error from a catalog or the cache service into
// its coded form.
func ResolveError(err error, libraryID, providerID string) *liberrors.Error {
	var rde *cache.ResourceDownloadError
	if errors.As(err, &rde) {
		return liberrors.FailedToDownloadResource(rde.URL, rde.Err)
	}
	var ile *library.InvalidLibraryError
	if errors.As(err, &ile) {
		return ile.Coded()
	}
	var coded *liberrors.Error
	if errors.As(err, &coded) {
		return coded
	}
	e := liberrors.UnableToResolveSource(libraryID, providerID)
	e.Cause = err
	return e
}

// ValidateCacheKey checks name and version before they are joined into a
// cache or metadata path.
func ValidateCacheKey(name, version string) error {
	if err := liberrors.ValidateLibraryName(name); err != nil {
		return err
	}
	return liberrors.ValidateVersion(version)
}

// MetadataPath is where catalog metadata for name (version == "") or for
// name@version is cached. The dot prefix keeps it apart from library files.
func (b *Base) MetadataPath(name, version string) string {
	if version == "" {
		return filepath.Join(b.host.CacheDirectory(), b.id, filepath.FromSlash(name), ".libman-metadata.json")
	}
	return filepath.Join(b.LibraryCacheDir(name, version), ".libman-files.json")
}
