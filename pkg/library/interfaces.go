package library

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/libman/pkg/naming"
)

// Catalog is the search and resolution surface of a provider.
type Catalog interface {
	// Search returns up to maxHits library groups ranked for term. An empty
	// term returns an unranked default set.
	Search(ctx context.Context, term string, maxHits int) ([]Group, error)

	// GetLibrary resolves the files of one library version. Unknown or
	// unresolvable libraries fail with *InvalidLibraryError; only
	// context errors and cache.ResourceDownloadError may escape otherwise.
	GetLibrary(ctx context.Context, name, version string) (*Library, error)

	// GetLatestVersion returns the newest version of name, or "" when the
	// catalog cannot answer. Pre-releases are skipped unless
	// includePreReleases is set. Only cancellation is reported as an error.
	GetLatestVersion(ctx context.Context, name string, includePreReleases bool) (string, error)

	// Versions returns every known version of name, newest first.
	Versions(ctx context.Context, name string) ([]string, error)

	// CompletionSet proposes names or versions for the partial library id
	// around caret.
	CompletionSet(ctx context.Context, libraryIDStart string, caret int) (CompletionSet, error)
}

// Provider owns a catalog and knows how to plan and install its libraries.
type Provider interface {
	ID() string
	NamingScheme() naming.Scheme
	// Catalog returns the provider's catalog, created on first use.
	Catalog() Catalog
	// SuggestedDestination proposes a destination folder for lib.
	SuggestedDestination(lib *Library) string
	// GoalState computes the destination-to-source plan for desired.
	GoalState(ctx context.Context, desired InstallationState) OperationResult[*GoalState]
	// Install plans desired and writes every file that is not already up
	// to date.
	Install(ctx context.Context, desired InstallationState) OperationResult[InstallationState]
}

// Settings is a user-wide key/value store.
type Settings interface {
	TryGetValue(name string) (string, bool)
	SetValue(name, value string) error
	RemoveValue(name string) error
}

// Host is the embedding application's side of the engine boundary.
type Host interface {
	WorkingDirectory() string
	CacheDirectory() string
	Logger() *log.Logger
	Settings() Settings

	// WriteFile writes the stream produced by open to path (absolute or
	// relative to the working directory). Paths outside the working
	// directory are rejected with LIB006 before anything is written.
	WriteFile(ctx context.Context, path string, open func() (io.ReadCloser, error)) error
	// DeleteFiles removes the given files and prunes directories left
	// empty by the removal, stopping at the working directory.
	DeleteFiles(ctx context.Context, paths ...string) error
	// ReadFile opens path for reading.
	ReadFile(ctx context.Context, path string) (io.ReadCloser, error)
	// CopyFile copies src to dst, creating parent directories.
	CopyFile(ctx context.Context, src, dst string) error
}
