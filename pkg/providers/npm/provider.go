// Package npm provides the npm-backed library providers, "unpkg" and
// "jsdelivr". Both resolve names and versions through the npm registry and
// differ only in where file lists and files come from.
package npm

import (
	"github.com/matzehuels/libman/pkg/cache"
	api "github.com/matzehuels/libman/pkg/integrations/npm"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/naming"
	"github.com/matzehuels/libman/pkg/providers"
)

// Provider ids used in manifests.
const (
	UnpkgID    = "unpkg"
	JsDelivrID = "jsdelivr"
)

// Provider installs npm packages file by file from a CDN.
type Provider struct {
	*providers.Base
}

// New creates a provider with the given id serving files from cdn.
func New(id string, host library.Host, service *cache.Service, registry *api.Client, cdn api.CDN) *Provider {
	p := &Provider{}
	p.Base = providers.NewBase(id, host, naming.Versioned{}, service, cdn.FileURL, func() library.Catalog {
		return &Catalog{base: p.Base, registry: registry, cdn: cdn}
	})
	return p
}

// NewUnpkg creates the unpkg provider.
func NewUnpkg(host library.Host, service *cache.Service, registry *api.Client, unpkg api.Unpkg) *Provider {
	return New(UnpkgID, host, service, registry, unpkg)
}

// NewJsDelivr creates the jsdelivr provider.
func NewJsDelivr(host library.Host, service *cache.Service, registry *api.Client, jsdelivr api.JsDelivr) *Provider {
	return New(JsDelivrID, host, service, registry, jsdelivr)
}

var _ library.Provider = (*Provider)(nil)
