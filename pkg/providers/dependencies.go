package providers

import (
	"slices"
	"strings"

	"github.com/matzehuels/libman/pkg/library"
)

// Dependencies is the set of providers available to an engine, bound to
// one host.
type Dependencies struct {
	host      library.Host
	providers []library.Provider
}

// NewDependencies registers providers in order. Lookups are by
// case-insensitive id; the first provider registered under an id wins.
func NewDependencies(host library.Host, providers ...library.Provider) *Dependencies {
	return &Dependencies{host: host, providers: providers}
}

// Host returns the host the providers were built for.
func (d *Dependencies) Host() library.Host { return d.host }

// Provider returns the provider registered under id.
func (d *Dependencies) Provider(id string) (library.Provider, bool) {
	for _, p := range d.providers {
		if strings.EqualFold(p.ID(), id) {
			return p, true
		}
	}
	return nil, false
}

// Providers returns every registered provider in registration order.
func (d *Dependencies) Providers() []library.Provider {
	return slices.Clone(d.providers)
}

// IDs returns the registered provider ids.
func (d *Dependencies) IDs() []string {
	ids := make([]string, len(d.providers))
	for i, p := range d.providers {
		ids[i] = p.ID()
	}
	return ids
}
