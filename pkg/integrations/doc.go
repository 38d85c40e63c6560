// Package integrations provides HTTP clients for the remote catalogs
// libman resolves libraries from.
//
// Each upstream has its own subpackage:
//
//   - [cdnjs]: the cdnjs library index and per-version file lists
//   - [npm]: the npm registry (packuments and search) plus the unpkg and
//     jsDelivr file-list endpoints
//
// All clients embed [Client], which handles default headers, retries of
// transient failures via [httputil.Retry], response caching through a
// [cache.Cache] and HTTP hook events. Client also implements
// [cache.Fetcher] and is what the file cache service downloads with.
//
//	c := cdnjs.NewClient(kv, 24*time.Hour)
//	lib, err := c.Library(ctx, "jquery", false)
//
// [cdnjs]: github.com/matzehuels/libman/pkg/integrations/cdnjs
// [npm]: github.com/matzehuels/libman/pkg/integrations/npm
// [httputil.Retry]: github.com/matzehuels/libman/pkg/httputil.Retry
// [cache.Cache]: github.com/matzehuels/libman/pkg/cache.Cache
// [cache.Fetcher]: github.com/matzehuels/libman/pkg/cache.Fetcher
package integrations
