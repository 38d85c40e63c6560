// Package cdnjs is a client for the cdnjs API (api.cdnjs.com) and CDN
// (cdnjs.cloudflare.com).
package cdnjs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/libman/pkg/cache"
	"github.com/matzehuels/libman/pkg/integrations"
)

// Default endpoints.
const (
	DefaultAPIURL = "https://api.cdnjs.com"
	DefaultCDNURL = "https://cdnjs.cloudflare.com/ajax/libs"
)

// IndexEntry is one library in the cdnjs index.
type IndexEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// LibraryInfo describes one library and every published version.
type LibraryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Versions    []string `json:"versions"`
}

// VersionInfo lists the files of one library version.
type VersionInfo struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Files   []string `json:"files"`
}

// Client talks to the cdnjs API.
type Client struct {
	*integrations.Client
	apiURL string
	cdnURL string
}

// NewClient creates a client. Empty URLs select the public endpoints.
// Index responses are cached in kv for ttl.
func NewClient(kv cache.Cache, ttl time.Duration, apiURL, cdnURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if cdnURL == "" {
		cdnURL = DefaultCDNURL
	}
	return &Client{
		Client: integrations.NewClient(kv, "cdnjs:", ttl, map[string]string{"Accept": "application/json"}),
		apiURL: strings.TrimRight(apiURL, "/"),
		cdnURL: strings.TrimRight(cdnURL, "/"),
	}
}

// IndexURL is the endpoint listing every library with its latest version.
func (c *Client) IndexURL() string {
	return c.apiURL + "/libraries?fields=name,description,version"
}

// LibraryURL is the metadata endpoint for name.
func (c *Client) LibraryURL(name string) string {
	return c.apiURL + "/libraries/" + url.PathEscape(name) + "?fields=name,description,version,versions"
}

// VersionURL is the file-list endpoint for one version.
func (c *Client) VersionURL(name, version string) string {
	return c.apiURL + "/libraries/" + url.PathEscape(name) + "/" + url.PathEscape(version) + "?fields=name,version,files"
}

// FileURL is the CDN download URL of one library file.
func (c *Client) FileURL(name, version, file string) string {
	return integrations.JoinURL(c.cdnURL, name, version, strings.TrimLeft(file, "/"))
}

// Index returns the full library index, cached for the client's TTL.
func (c *Client) Index(ctx context.Context, refresh bool) ([]IndexEntry, error) {
	var entries []IndexEntry
	err := c.Cached(ctx, "index", refresh, &entries, func() error {
		var resp struct {
			Results []IndexEntry `json:"results"`
		}
		if err := c.Get(ctx, c.IndexURL(), &resp); err != nil {
			return err
		}
		entries = resp.Results
		return nil
	})
	return entries, err
}

// DecodeLibrary parses a LibraryURL response. cdnjs answers unknown names
// with an empty object or an error document, both of which are reported as
// integrations.ErrNotFound.
func DecodeLibrary(data []byte) (*LibraryInfo, error) {
	var info LibraryInfo
	if err := decode(data, &info); err != nil {
		return nil, err
	}
	if info.Name == "" {
		return nil, integrations.ErrNotFound
	}
	return &info, nil
}

// DecodeVersion parses a VersionURL response.
func DecodeVersion(data []byte) (*VersionInfo, error) {
	var info VersionInfo
	if err := decode(data, &info); err != nil {
		return nil, err
	}
	if len(info.Files) == 0 {
		return nil, integrations.ErrNotFound
	}
	return &info, nil
}

func decode(data []byte, v any) error {
	var apiErr struct {
		Error   bool   `json:"error"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error {
		if apiErr.Status == 404 {
			return integrations.ErrNotFound
		}
		return fmt.Errorf("%w: %s", integrations.ErrNetwork, apiErr.Message)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cdnjs response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err means the library or version does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, integrations.ErrNotFound)
}
