package providers

import (
	"context"
	"errors"
	"os"

	"github.com/matzehuels/libman/pkg/cache"
	"github.com/matzehuels/libman/pkg/integrations"
)

// MetadataMode picks which side of the cache a metadata lookup trusts first.
type MetadataMode int

const (
	// LiveFirst fetches fresh metadata and falls back to the cached copy.
	// Used for data that changes, such as a library's version list.
	LiveFirst MetadataMode = iota
	// CacheFirst serves the cached copy and only fetches on a miss. Used
	// for immutable data, such as the file list of a published version.
	CacheFirst
)

// LoadMetadata fetches catalog metadata through the cache service. An
// upstream 404 is reported as integrations.ErrNotFound so catalogs can
// turn it into an unknown-library error.
func LoadMetadata(ctx context.Context, svc *cache.Service, mode MetadataMode, url, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if mode == CacheFirst {
		data, err = svc.GetContentsFromCachedFileWithWebFallback(ctx, path, url)
	} else {
		data, err = svc.GetContentsFromURLWithCacheFallback(ctx, url, path)
	}
	if err != nil && errors.Is(err, integrations.ErrNotFound) {
		return nil, integrations.ErrNotFound
	}
	return data, err
}

// DiscardMetadata removes a cached metadata file that turned out to be
// unusable, so the next lookup fetches it again.
func DiscardMetadata(path string) {
	_ = os.Remove(path)
}
