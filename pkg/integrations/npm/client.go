package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/libman/pkg/cache"
	"github.com/matzehuels/libman/pkg/integrations"
)

// DefaultRegistryURL is the public npm registry.
const DefaultRegistryURL = "https://registry.npmjs.org"

// Packument is the subset of registry package metadata libman reads.
type Packument struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	DistTags    map[string]string         `json:"dist-tags"`
	Versions    map[string]VersionDetails `json:"versions"`
}

// VersionDetails is one entry of Packument.Versions.
type VersionDetails struct {
	Description string `json:"description"`
	Deprecated  string `json:"deprecated,omitempty"`
}

// SearchResult is one registry search hit.
type SearchResult struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Client talks to the npm registry.
type Client struct {
	*integrations.Client
	registryURL string
}

// NewClient creates a registry client. Search responses are cached in kv
// for ttl. An empty registryURL selects the public registry.
func NewClient(kv cache.Cache, ttl time.Duration, registryURL string) *Client {
	if registryURL == "" {
		registryURL = DefaultRegistryURL
	}
	return &Client{
		Client:      integrations.NewClient(kv, "npm:", ttl, map[string]string{"Accept": "application/json"}),
		registryURL: strings.TrimRight(registryURL, "/"),
	}
}

// PackumentURL returns the metadata URL of name. The "/" of a scoped
// name is escaped as the registry expects.
func (c *Client) PackumentURL(name string) string {
	return c.registryURL + "/" + EscapeName(name)
}

// SearchURL returns the search endpoint URL for term.
func (c *Client) SearchURL(term string, size int) string {
	q := url.Values{}
	q.Set("text", searchText(term))
	q.Set("size", strconv.Itoa(size))
	return c.registryURL + "/-/v1/search?" + q.Encode()
}

// Search queries the registry, caching results per term and size.
func (c *Client) Search(ctx context.Context, term string, size int) ([]SearchResult, error) {
	if size <= 0 {
		size = 20
	}
	var results []SearchResult
	key := "search:" + strconv.Itoa(size) + ":" + term
	err := c.Cached(ctx, key, false, &results, func() error {
		var resp struct {
			Objects []struct {
				Package SearchResult `json:"package"`
			} `json:"objects"`
		}
		if err := c.Get(ctx, c.SearchURL(term, size), &resp); err != nil {
			return err
		}
		results = results[:0]
		for _, o := range resp.Objects {
			results = append(results, o.Package)
		}
		return nil
	})
	return results, err
}

// DecodePackument parses a PackumentURL response. A document without any
// published version is reported as integrations.ErrNotFound.
func DecodePackument(data []byte) (*Packument, error) {
	var p Packument
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode packument: %w", err)
	}
	if len(p.Versions) == 0 {
		return nil, integrations.ErrNotFound
	}
	return &p, nil
}

// EscapeName escapes a package name for use as a registry path segment.
func EscapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		return "@" + url.PathEscape(name[1:])
	}
	return url.PathEscape(name)
}

// searchText turns a scope-only term ("@angular" or "@angular/") into the
// registry's scope qualifier.
func searchText(term string) string {
	if strings.HasPrefix(term, "@") {
		scope, rest, _ := strings.Cut(term[1:], "/")
		if rest == "" && scope != "" {
			return "scope:" + scope
		}
	}
	return term
}
