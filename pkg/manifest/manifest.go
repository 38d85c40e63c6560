// Package manifest reads and writes libman.json and drives restore and
// clean across its library entries.
//
// # Format
//
//	{
//	  "version": "1.0",
//	  "defaultProvider": "cdnjs",
//	  "defaultDestination": "wwwroot/lib",
//	  "libraries": [
//	    { "library": "jquery@3.7.1", "destination": "wwwroot/lib/jquery/",
//	      "files": ["jquery.js", "jquery.min.js"] }
//	  ]
//	}
//
// An entry without "provider" or "destination" inherits the manifest
// default. Precedence is strict: the entry's value, then the default, then
// an error (LIB007 for the provider, LIB021 for the destination).
//
// # Restore
//
// [Manifest.Restore] installs every entry through its provider. Entries
// run concurrently and in isolation: one entry failing never stops
// another, and results come back in manifest order.
package manifest

import (
	"slices"
	"strings"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/naming"
	"github.com/matzehuels/libman/pkg/providers"
)

// FileName is the conventional manifest file name.
const FileName = "libman.json"

// DefaultVersion is the schema version written by New.
const DefaultVersion = "1.0"

// SupportedVersions lists the schema versions this engine reads.
var SupportedVersions = []string{"1.0", "3.0"}

// Manifest is a parsed libman.json bound to a provider set.
type Manifest struct {
	Version            string
	DefaultProvider    string
	DefaultDestination string

	libraries []library.InstallationState
	deps      *providers.Dependencies
}

// New returns an empty manifest at the default schema version.
func New(deps *providers.Dependencies) *Manifest {
	return &Manifest{Version: DefaultVersion, deps: deps}
}

// Libraries returns a copy of the entries in manifest order.
func (m *Manifest) Libraries() []library.InstallationState {
	out := make([]library.InstallationState, len(m.libraries))
	for i, l := range m.libraries {
		out[i] = l.Clone()
	}
	return out
}

// Dependencies returns the provider set the manifest was bound to.
func (m *Manifest) Dependencies() *providers.Dependencies { return m.deps }

// scheme returns the naming scheme of providerID. Unknown providers use
// the versioned scheme so their entries still round-trip.
func (m *Manifest) scheme(providerID string) naming.Scheme {
	if m.deps != nil {
		if p, ok := m.deps.Provider(providerID); ok {
			return p.NamingScheme()
		}
	}
	return naming.Versioned{}
}

// LibraryID returns the canonical id of state under its provider's scheme.
func (m *Manifest) LibraryID(state library.InstallationState) string {
	return m.scheme(state.ProviderID).LibraryID(state.Name, state.Version)
}

// validate checks one entry before it reaches a provider.
func (m *Manifest) validate(state library.InstallationState) (library.Provider, *liberrors.Error) {
	if strings.TrimSpace(state.Name) == "" {
		return nil, liberrors.LibraryIDIsUndefined()
	}
	if state.ProviderID == "" {
		return nil, liberrors.ProviderIsUndefined()
	}
	p, ok := m.deps.Provider(state.ProviderID)
	if !ok {
		return nil, liberrors.ProviderUnknown(state.ProviderID)
	}
	if err := checkLibraryID(p, state); err != nil {
		return nil, err
	}
	if strings.TrimSpace(state.DestinationPath) == "" && !mappingsHaveDestinations(state.FileMappings) {
		return nil, liberrors.DestinationNotSpecified(m.LibraryID(state))
	}
	return p, nil
}

// checkLibraryID rejects ids the provider's scheme cannot resolve, such as
// a versioned library without a version.
func checkLibraryID(p library.Provider, state library.InstallationState) *liberrors.Error {
	scheme := p.NamingScheme()
	id := scheme.LibraryID(state.Name, state.Version)
	if !scheme.IsValidLibraryID(id) {
		return liberrors.UnableToResolveSource(id, p.ID())
	}
	return nil
}

func mappingsHaveDestinations(mappings []library.FileMapping) bool {
	if len(mappings) == 0 {
		return false
	}
	for _, fm := range mappings {
		if strings.TrimSpace(fm.Destination) == "" {
			return false
		}
	}
	return true
}

// duplicates returns, per entry index, the LIB016 error for every entry
// that repeats an earlier (name, provider) pair. The first declaration
// stays valid.
func (m *Manifest) duplicates() map[int]*liberrors.Error {
	seen := map[string]bool{}
	dups := map[int]*liberrors.Error{}
	for i, l := range m.libraries {
		if l.Name == "" {
			continue
		}
		key := strings.ToLower(l.Name) + "\x00" + strings.ToLower(l.ProviderID)
		if seen[key] {
			dups[i] = liberrors.DuplicateLibrariesInManifest(l.Name)
			continue
		}
		seen[key] = true
	}
	return dups
}

// IsSupportedVersion reports whether v is a schema version this engine reads.
func IsSupportedVersion(v string) bool {
	return slices.Contains(SupportedVersions, v)
}
