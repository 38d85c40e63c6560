package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/libman/pkg/observability"
)

// registerLogHooks routes restore, cache and HTTP events to debug logging.
func registerLogHooks(l *log.Logger) {
	observability.SetRestoreHooks(logRestoreHooks{l})
	observability.SetCacheHooks(logCacheHooks{l})
	observability.SetHTTPHooks(logHTTPHooks{l})
}

type logRestoreHooks struct{ l *log.Logger }

func (h logRestoreHooks) OnRestoreStart(_ context.Context, n int) {
	h.l.Debug("restore started", "libraries", n)
}

func (h logRestoreHooks) OnRestoreComplete(_ context.Context, n, failed int, d time.Duration) {
	h.l.Debug("restore finished", "libraries", n, "failed", failed, "took", d.Round(time.Millisecond))
}

func (h logRestoreHooks) OnLibraryStart(_ context.Context, provider, id string) {
	h.l.Debug("installing", "provider", provider, "library", id)
}

func (h logRestoreHooks) OnLibraryComplete(_ context.Context, provider, id string, upToDate bool, d time.Duration, err error) {
	if err != nil {
		h.l.Debug("install failed", "provider", provider, "library", id, "err", err)
		return
	}
	h.l.Debug("installed", "provider", provider, "library", id, "up_to_date", upToDate, "took", d.Round(time.Millisecond))
}

func (h logRestoreHooks) OnFileWritten(_ context.Context, path string) {
	h.l.Debug("wrote file", "path", path)
}

type logCacheHooks struct{ l *log.Logger }

func (h logCacheHooks) OnCacheHit(_ context.Context, kind string)  { h.l.Debug("cache hit", "kind", kind) }
func (h logCacheHooks) OnCacheMiss(_ context.Context, kind string) { h.l.Debug("cache miss", "kind", kind) }

func (h logCacheHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.l.Debug("cache set", "kind", kind, "bytes", size)
}

type logHTTPHooks struct{ l *log.Logger }

func (h logHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.l.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHTTPHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.l.Debug("response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.l.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}
