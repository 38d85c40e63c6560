// Package cache holds libman's two caching layers.
//
// The first is the [Service]: the on-disk library file cache that providers
// install from. Files are stored at caller-chosen paths under the host's
// cache directory ({cacheDir}/{provider}/{name}/{version}/{file}), downloaded
// atomically, and deduplicated across concurrent restores.
//
// The second is a small TTL key/value [Cache] used for catalog responses
// that are cheap to recompute but expensive to fetch, such as search
// results. It has file, Redis and null backends.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL key/value store for serialized catalog responses.
type Cache interface {
	// Get returns the value for key. ok is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
