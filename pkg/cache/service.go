package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/libman/pkg/observability"
)

// Fetcher opens a remote resource for reading.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Entry pairs a download URL with its local cache file. It is comparable so
// batches can be deduplicated with a set.
type Entry struct {
	URL  string
	Path string
}

// ResourceDownloadError reports a resource that could neither be downloaded
// nor served from the cache.
type ResourceDownloadError struct {
	URL string
	Err error
}

func (e *ResourceDownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *ResourceDownloadError) Unwrap() error { return e.Err }

// Service manages library files on disk below a cache directory.
type Service struct {
	fetcher Fetcher
	// Concurrency bounds parallel downloads in RefreshCache. Zero means 8.
	Concurrency int

	flight singleflight.Group
}

// NewService creates a service downloading through f.
func NewService(f Fetcher) *Service {
	return &Service{fetcher: f}
}

// GetContentsFromURLWithCacheFallback fetches url live and refreshes the
// cache file with the result. When the fetch fails, the existing cache file
// is returned instead; when there is none either, a *ResourceDownloadError
// is returned.
func (s *Service) GetContentsFromURLWithCacheFallback(ctx context.Context, url, cacheFile string) ([]byte, error) {
	data, fetchErr := s.fetchAll(ctx, url)
	if fetchErr == nil {
		if err := writeFileAtomic(cacheFile, data); err == nil {
			observability.Cache().OnCacheSet(ctx, "file", len(data))
		}
		return data, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if cached, err := os.ReadFile(cacheFile); err == nil {
		observability.Cache().OnCacheHit(ctx, "file")
		return cached, nil
	}
	return nil, &ResourceDownloadError{URL: url, Err: fetchErr}
}

// GetContentsFromCachedFileWithWebFallback returns the cache file when it
// exists, and otherwise downloads url into it first.
func (s *Service) GetContentsFromCachedFileWithWebFallback(ctx context.Context, cacheFile, url string) ([]byte, error) {
	if data, err := os.ReadFile(cacheFile); err == nil {
		observability.Cache().OnCacheHit(ctx, "file")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "file")
	if err := s.download(ctx, Entry{URL: url, Path: cacheFile}); err != nil {
		return nil, err
	}
	return os.ReadFile(cacheFile)
}

// RefreshCache downloads every entry whose cache file is missing.
// Identical entries are downloaded once, and concurrent callers asking for
// the same entry share one download. The first failure cancels the rest of
// the batch and is returned as a *ResourceDownloadError. Cancellation is
// checked before each entry.
func (s *Service) RefreshCache(ctx context.Context, entries []Entry) error {
	seen := make(map[Entry]bool, len(entries))
	var pending []Entry
	for _, e := range entries {
		if seen[e] {
			continue
		}
		seen[e] = true
		if _, err := os.Stat(e.Path); err == nil {
			continue
		}
		pending = append(pending, e)
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit <= 0 {
		limit = 8
	}
	g.SetLimit(limit)
	for _, e := range pending {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return s.download(gctx, e)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// download fetches e.URL into e.Path, sharing in-flight downloads of the
// same entry.
func (s *Service) download(ctx context.Context, e Entry) error {
	_, err, _ := s.flight.Do(e.URL+"\x00"+e.Path, func() (any, error) {
		if _, err := os.Stat(e.Path); err == nil {
			return nil, nil
		}
		data, err := s.fetchAll(ctx, e.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &ResourceDownloadError{URL: e.URL, Err: err}
		}
		if err := writeFileAtomic(e.Path, data); err != nil {
			return nil, &ResourceDownloadError{URL: e.URL, Err: err}
		}
		observability.Cache().OnCacheSet(ctx, "file", len(data))
		return nil, nil
	})
	return err
}

func (s *Service) fetchAll(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// writeFileAtomic writes data to a uniquely named sibling temp file and
// renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
