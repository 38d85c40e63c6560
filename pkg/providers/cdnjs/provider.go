// Package cdnjs provides the "cdnjs" library provider.
package cdnjs

import (
	"github.com/matzehuels/libman/pkg/cache"
	api "github.com/matzehuels/libman/pkg/integrations/cdnjs"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/naming"
	"github.com/matzehuels/libman/pkg/providers"
)

// ID is the provider id used in manifests.
const ID = "cdnjs"

// Provider installs libraries from cdnjs.
type Provider struct {
	*providers.Base
	client *api.Client
}

// New creates the provider. service downloads library files; client
// answers catalog queries.
func New(host library.Host, service *cache.Service, client *api.Client) *Provider {
	p := &Provider{client: client}
	p.Base = providers.NewBase(ID, host, naming.Versioned{}, service, client.FileURL, func() library.Catalog {
		return &Catalog{base: p.Base, client: client}
	})
	return p
}

var _ library.Provider = (*Provider)(nil)
