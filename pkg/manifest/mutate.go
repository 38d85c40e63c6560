package manifest

import (
	"context"
	"path"
	"strings"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/naming"
	"github.com/matzehuels/libman/pkg/providers"
)

// InstallOptions describes a library to add to the manifest.
type InstallOptions struct {
	LibraryID   string
	ProviderID  string
	Destination string
	Files       []string
}

// InstallLibrary resolves, installs and appends a new entry. The manifest
// is only modified when the install succeeds; callers save it afterwards.
//
// An empty provider falls back to the manifest default. An empty
// destination becomes the default destination joined with the provider's
// suggestion for the library. A library already present for the same
// provider fails with LIB019.
func (m *Manifest) InstallLibrary(ctx context.Context, opts InstallOptions) Result {
	state := library.InstallationState{
		ProviderID:      strings.TrimSpace(opts.ProviderID),
		DestinationPath: strings.TrimSpace(opts.Destination),
		Files:           opts.Files,
	}
	if state.ProviderID == "" && m.DefaultProvider != "" {
		state.ProviderID = m.DefaultProvider
		state.IsUsingDefaultProvider = true
	}
	if strings.TrimSpace(opts.LibraryID) == "" {
		return library.Fail(state, liberrors.LibraryIDIsUndefined())
	}
	if state.ProviderID == "" {
		return library.Fail(state, liberrors.ProviderIsUndefined())
	}
	p, ok := m.deps.Provider(state.ProviderID)
	if !ok {
		return library.Fail(state, liberrors.ProviderUnknown(state.ProviderID))
	}
	state.ProviderID = p.ID()
	state.Name, state.Version = p.NamingScheme().NameAndVersion(strings.TrimSpace(opts.LibraryID))

	if m.find(state.Name, state.ProviderID) >= 0 {
		return library.Fail(state, liberrors.LibraryAlreadyInstalled(state.Name))
	}

	// A bare name installs the newest stable release, pinned in the entry.
	if _, versioned := p.NamingScheme().(naming.Versioned); versioned && (state.Version == "" || library.IsLatestTag(state.Version)) {
		latest, err := p.Catalog().GetLatestVersion(ctx, state.Name, false)
		if err != nil {
			if library.IsCancellation(err) {
				return library.Cancelled(state)
			}
			return library.Fail(state, providers.ResolveError(err, opts.LibraryID, p.ID()))
		}
		if latest == "" {
			return library.Fail(state, liberrors.UnableToResolveSource(opts.LibraryID, p.ID()))
		}
		state.Version = latest
	}
	if err := checkLibraryID(p, state); err != nil {
		return library.Fail(state, err)
	}

	if state.DestinationPath == "" {
		if m.DefaultDestination == "" {
			return library.Fail(state, liberrors.DestinationNotSpecified(opts.LibraryID))
		}
		lib, err := p.Catalog().GetLibrary(ctx, state.Name, state.Version)
		if err != nil {
			if library.IsCancellation(err) {
				return library.Cancelled(state)
			}
			return library.Fail(state, providers.ResolveError(err, opts.LibraryID, p.ID()))
		}
		state.DestinationPath = path.Join(m.DefaultDestination, p.SuggestedDestination(lib))
	}

	res := p.Install(ctx, state)
	if !res.Success() {
		return res
	}
	m.libraries = append(m.libraries, res.Value.Clone())
	return res
}

// find returns the index of the entry for name under providerID, or -1.
func (m *Manifest) find(name, providerID string) int {
	for i, l := range m.libraries {
		if strings.EqualFold(l.Name, name) && strings.EqualFold(l.ProviderID, providerID) {
			return i
		}
	}
	return -1
}

// Uninstall deletes the files of the entry matching state and removes it
// from the manifest. The entry stays when its files cannot be deleted.
func (m *Manifest) Uninstall(ctx context.Context, state library.InstallationState) Result {
	i := m.find(state.Name, state.ProviderID)
	if i < 0 {
		return library.Fail(state, liberrors.UnableToResolveSource(state.DisplayID(), state.ProviderID))
	}
	res := m.cleanOne(ctx, m.libraries[i])
	if !res.Success() {
		return res
	}
	m.RemoveLibrary(state)
	return res
}

// RemoveLibrary drops the entry matching state without touching disk.
// It reports whether an entry was removed.
func (m *Manifest) RemoveLibrary(state library.InstallationState) bool {
	i := m.find(state.Name, state.ProviderID)
	if i < 0 {
		return false
	}
	m.libraries = append(m.libraries[:i], m.libraries[i+1:]...)
	return true
}

// ReplaceVersion changes the version of the entry matching state and
// returns the updated entry.
func (m *Manifest) ReplaceVersion(state library.InstallationState, version string) (library.InstallationState, bool) {
	i := m.find(state.Name, state.ProviderID)
	if i < 0 {
		return state, false
	}
	m.libraries[i].Version = version
	return m.libraries[i].Clone(), true
}
