package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/libman/pkg/cache"
	"github.com/matzehuels/libman/pkg/httputil"
)

func newTestClient(t *testing.T, server *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return NewClient(c, "test:", time.Hour, headers).WithHTTPClient(server.Client())
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "", 0, nil)
	if client.cache == nil {
		t.Fatal("nil cache should fall back to a null cache")
	}
	if client.http == nil {
		t.Error("http client is nil")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotHeader = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := newTestClient(t, server, map[string]string{"User-Agent": "libman"})
	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("message = %q, want hello", resp.Message)
	}
	if gotHeader != "libman" {
		t.Errorf("User-Agent = %q, want libman", gotHeader)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var resp map[string]string
	err := newTestClient(t, server, nil).Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientFetchRetries5xx(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil).WithRetry(httputil.Policy{Attempts: 2, Delay: time.Millisecond})
	rc, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "ok" || hits.Load() != 2 {
		t.Errorf("Fetch() = %q after %d hits", data, hits.Load())
	}
}

func TestClientFetchHonorsRetryAfter(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil).WithRetry(httputil.Policy{Attempts: 2, Delay: time.Millisecond, MaxDelay: 5 * time.Second})
	start := time.Now()
	rc, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	rc.Close()
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Errorf("retried after %v, want at least the 1s Retry-After", elapsed)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
}

func TestClientFetchAttempts(t *testing.T) {
	tests := []struct {
		attempts int
		want     int32
	}{
		{1, 1},
		{4, 4},
	}
	for _, tt := range tests {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		client := newTestClient(t, server, nil).WithRetry(httputil.Policy{Attempts: tt.attempts, Delay: time.Millisecond})
		_, err := client.Fetch(context.Background(), server.URL)
		server.Close()
		if !errors.Is(err, ErrNetwork) {
			t.Errorf("attempts %d: err = %v, want ErrNetwork", tt.attempts, err)
		}
		if got := hits.Load(); got != tt.want {
			t.Errorf("attempts %d: hits = %d, want %d", tt.attempts, got, tt.want)
		}
	}
}

func TestClientCached(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	client := newTestClient(t, server, nil)

	type payload struct {
		Value string `json:"value"`
	}
	fetches := 0
	fetch := func(v *payload) func() error {
		return func() error {
			fetches++
			v.Value = "fetched"
			return nil
		}
	}

	var first payload
	if err := client.Cached(context.Background(), "key", false, &first, fetch(&first)); err != nil {
		t.Fatal(err)
	}
	var second payload
	if err := client.Cached(context.Background(), "key", false, &second, fetch(&second)); err != nil {
		t.Fatal(err)
	}
	if fetches != 1 || second.Value != "fetched" {
		t.Errorf("fetches = %d, second = %+v; want one fetch and a cached value", fetches, second)
	}

	var third payload
	if err := client.Cached(context.Background(), "key", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if fetches != 2 {
		t.Errorf("refresh did not bypass cache: fetches = %d", fetches)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	client := newTestClient(t, server, nil)

	var v string
	err := client.Cached(context.Background(), "missing", false, &v, func() error { return ErrNotFound })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		retryAfter string
		wantErr    bool
		notFound   bool
		retryable  bool
		wantAfter  time.Duration
	}{
		{"ok", 200, "", false, false, false, 0},
		{"no content", 204, "", false, false, false, 0},
		{"not found", 404, "", true, true, false, 0},
		{"rate limited", 429, "", true, false, true, 0},
		{"rate limited with retry-after", 429, "3", true, false, true, 3 * time.Second},
		{"server error", 500, "", true, false, true, 0},
		{"server error ignores retry-after", 500, "3", true, false, true, 0},
		{"unavailable with retry-after", 503, "2", true, false, true, 2 * time.Second},
		{"bad request", 400, "", true, false, false, 0},
		{"forbidden", 403, "", true, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Header: http.Header{}}
			if tt.retryAfter != "" {
				resp.Header.Set("Retry-After", tt.retryAfter)
			}
			err := checkStatus(resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkStatus(%d) = %v", tt.code, err)
			}
			if got := errors.Is(err, ErrNotFound); got != tt.notFound {
				t.Errorf("ErrNotFound = %v, want %v", got, tt.notFound)
			}
			var re *httputil.RetryableError
			if got := errors.As(err, &re); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
			if re != nil && re.After != tt.wantAfter {
				t.Errorf("After = %v, want %v", re.After, tt.wantAfter)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"jQuery", "jquery"},
		{"font-awesome", "fontawesome"},
		{"Chart.js", "chartjs"},
		{"  lodash_es ", "lodashes"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
