package npm

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/libman/pkg/integrations"
)

// Default CDN endpoints.
const (
	DefaultUnpkgURL        = "https://unpkg.com"
	DefaultJsDelivrAPIURL  = "https://data.jsdelivr.com/v1/package/npm"
	DefaultJsDelivrFileURL = "https://cdn.jsdelivr.net/npm"
)

// CDN lists and serves the files of npm package versions.
type CDN interface {
	// FilesURL is the endpoint listing the files of name@version.
	FilesURL(name, version string) string
	// DecodeFiles parses a FilesURL response into library-relative paths.
	DecodeFiles(data []byte) ([]string, error)
	// FileURL is the download URL of one file.
	FileURL(name, version, file string) string
}

// Unpkg serves files from unpkg.com.
type Unpkg struct{ BaseURL string }

// NewUnpkg returns an unpkg endpoint; "" selects the public one.
func NewUnpkg(baseURL string) Unpkg {
	if baseURL == "" {
		baseURL = DefaultUnpkgURL
	}
	return Unpkg{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (u Unpkg) FilesURL(name, version string) string {
	return u.BaseURL + "/" + name + "@" + version + "/?meta"
}

func (u Unpkg) FileURL(name, version, file string) string {
	return u.BaseURL + "/" + name + "@" + version + "/" + strings.TrimLeft(file, "/")
}

// unpkgNode covers both listing formats unpkg has served: a nested
// directory tree, and a flat "files" array with full paths.
type unpkgNode struct {
	Path  string      `json:"path"`
	Type  string      `json:"type"`
	Files []unpkgNode `json:"files"`
}

func (u Unpkg) DecodeFiles(data []byte) ([]string, error) {
	var root unpkgNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode unpkg listing: %w", err)
	}
	var out []string
	var walk func(n unpkgNode)
	walk = func(n unpkgNode) {
		if n.Type == "file" || (n.Type == "" && len(n.Files) == 0 && n.Path != "") {
			if p := strings.TrimLeft(n.Path, "/"); p != "" {
				out = append(out, p)
			}
			return
		}
		for _, child := range n.Files {
			walk(child)
		}
	}
	walk(root)
	if len(out) == 0 {
		return nil, integrations.ErrNotFound
	}
	slices.Sort(out)
	return out, nil
}

// JsDelivr serves files from cdn.jsdelivr.net and lists them through the
// data.jsdelivr.com API.
type JsDelivr struct {
	APIURL   string
	FileBase string
}

// NewJsDelivr returns jsDelivr endpoints; "" selects the public ones.
func NewJsDelivr(apiURL, fileURL string) JsDelivr {
	if apiURL == "" {
		apiURL = DefaultJsDelivrAPIURL
	}
	if fileURL == "" {
		fileURL = DefaultJsDelivrFileURL
	}
	return JsDelivr{APIURL: strings.TrimRight(apiURL, "/"), FileBase: strings.TrimRight(fileURL, "/")}
}

func (j JsDelivr) FilesURL(name, version string) string {
	return j.APIURL + "/" + name + "@" + version + "/flat"
}

func (j JsDelivr) FileURL(name, version, file string) string {
	return j.FileBase + "/" + name + "@" + version + "/" + strings.TrimLeft(file, "/")
}

func (j JsDelivr) DecodeFiles(data []byte) ([]string, error) {
	var resp struct {
		Files []struct {
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode jsdelivr listing: %w", err)
	}
	out := make([]string, 0, len(resp.Files))
	for _, f := range resp.Files {
		if p := strings.TrimLeft(f.Name, "/"); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, integrations.ErrNotFound
	}
	slices.Sort(out)
	return out, nil
}
