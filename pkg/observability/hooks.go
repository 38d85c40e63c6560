// Package observability provides hooks for restore, cache and HTTP events.
//
// Libraries emit events through the registered hooks; by default every hook
// is a no-op, so the engine carries no dependency on a metrics or tracing
// backend. Hooks are registered once by main:
//
//	func main() {
//	    observability.SetRestoreHooks(&myRestoreHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// and called from library code:
//
//	observability.Restore().OnLibraryStart(ctx, "cdnjs", "jquery@3.7.1")
package observability

import (
	"context"
	"sync"
	"time"
)

// RestoreHooks receives events from manifest restore and clean operations.
type RestoreHooks interface {
	OnRestoreStart(ctx context.Context, libraries int)
	OnRestoreComplete(ctx context.Context, libraries, failed int, duration time.Duration)

	// OnLibraryStart and OnLibraryComplete bracket one entry's install.
	OnLibraryStart(ctx context.Context, provider, libraryID string)
	OnLibraryComplete(ctx context.Context, provider, libraryID string, upToDate bool, duration time.Duration, err error)

	// OnFileWritten records one destination file written by an install.
	OnFileWritten(ctx context.Context, path string)
}

// CacheHooks receives events from cache operations. keyType is "file" for
// the library file cache and "kv" for catalog response caches.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopRestoreHooks is a no-op implementation of RestoreHooks.
type NoopRestoreHooks struct{}

func (NoopRestoreHooks) OnRestoreStart(context.Context, int)                        {}
func (NoopRestoreHooks) OnRestoreComplete(context.Context, int, int, time.Duration) {}
func (NoopRestoreHooks) OnLibraryStart(context.Context, string, string)             {}
func (NoopRestoreHooks) OnLibraryComplete(context.Context, string, string, bool, time.Duration, error) {
}
func (NoopRestoreHooks) OnFileWritten(context.Context, string) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	restoreHooks RestoreHooks = NoopRestoreHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetRestoreHooks registers restore hooks. Nil is ignored.
func SetRestoreHooks(h RestoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		restoreHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Restore returns the registered restore hooks.
func Restore() RestoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return restoreHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults. Tests use it.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	restoreHooks = NoopRestoreHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
