package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/libman/pkg/buildinfo"
	"github.com/matzehuels/libman/pkg/cache"
	"github.com/matzehuels/libman/pkg/httputil"
	"github.com/matzehuels/libman/pkg/observability"
)

// Client provides the HTTP plumbing shared by the catalog API clients:
// default headers, retry of transient failures, a TTL response cache and
// HTTP hooks. It also satisfies [cache.Fetcher] so the file cache service
// downloads library files through it.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
	retry   httputil.Policy
}

// NewClient creates a Client. Responses stored with [Client.Cached] go to c
// under keys prefixed with prefix and expire after ttl. A nil c disables
// response caching.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(""),
		cache:   c,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
		retry:   httputil.DefaultPolicy,
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests point it at an
// httptest server.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithRetry replaces the retry policy used by [Client.Cached] and
// [Client.Fetch].
func (c *Client) WithRetry(p httputil.Policy) *Client {
	c.retry = p
	return c
}

// Cached returns the cached value for key, or runs fetch (with retry) and
// caches what it decoded into v. refresh skips the cache lookup.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	key = c.prefix + key
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, "kv")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "kv")
	}
	if err := httputil.Retry(ctx, c.retry, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "kv", len(data))
		}
	}
	return nil
}

// Get performs a GET and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	body, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// Fetch opens rawURL for streaming, retrying transient failures.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := httputil.Retry(ctx, c.retry, func() error {
		b, err := c.doRequest(ctx, rawURL)
		body = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500 || code == http.StatusTooManyRequests:
		re := &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
		if code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable {
			re.After = httputil.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		}
		return re
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// JoinURL appends escaped path segments to base.
func JoinURL(base string, segments ...string) string {
	u, err := url.JoinPath(base, segments...)
	if err != nil {
		return base
	}
	return u
}
