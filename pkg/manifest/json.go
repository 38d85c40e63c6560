package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/providers"
)

type manifestJSON struct {
	Version            string        `json:"version"`
	DefaultProvider    string        `json:"defaultProvider,omitempty"`
	DefaultDestination string        `json:"defaultDestination,omitempty"`
	Libraries          []libraryJSON `json:"libraries"`
}

type libraryJSON struct {
	Library      string            `json:"library"`
	Provider     string            `json:"provider,omitempty"`
	Destination  string            `json:"destination,omitempty"`
	Files        []string          `json:"files,omitempty"`
	FileMappings []fileMappingJSON `json:"fileMappings,omitempty"`
}

type fileMappingJSON struct {
	Root        string   `json:"root,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Files       []string `json:"files,omitempty"`
}

// FromJSON parses a manifest. Malformed JSON fails with LIB004 and an
// unsupported schema version with LIB009. Entry-level problems (missing
// provider, unknown provider, missing destination) are not parse errors;
// they are reported per entry by Restore.
func FromJSON(data []byte, deps *providers.Dependencies) (*Manifest, error) {
	var raw manifestJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, liberrors.ManifestMalformed(err)
	}
	if !IsSupportedVersion(raw.Version) {
		return nil, liberrors.VersionIsNotSupported(raw.Version)
	}

	m := &Manifest{
		Version:            raw.Version,
		DefaultProvider:    raw.DefaultProvider,
		DefaultDestination: raw.DefaultDestination,
		deps:               deps,
	}
	for _, l := range raw.Libraries {
		m.libraries = append(m.libraries, m.fromEntry(l))
	}
	return m, nil
}

// FromFile reads and parses the manifest at path. A missing file returns
// an error matching os.ErrNotExist.
func FromFile(path string, deps *providers.Dependencies) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromJSON(data, deps)
}

// IsNotExist reports whether err means the manifest file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (m *Manifest) fromEntry(l libraryJSON) library.InstallationState {
	state := library.InstallationState{
		ProviderID:      strings.TrimSpace(l.Provider),
		DestinationPath: strings.TrimSpace(l.Destination),
		Files:           l.Files,
	}
	if state.ProviderID == "" && m.DefaultProvider != "" {
		state.ProviderID = m.DefaultProvider
		state.IsUsingDefaultProvider = true
	}
	if state.DestinationPath == "" && m.DefaultDestination != "" {
		state.DestinationPath = m.DefaultDestination
		state.IsUsingDefaultDestination = true
	}
	for _, fm := range l.FileMappings {
		state.FileMappings = append(state.FileMappings, library.FileMapping{
			Root: fm.Root, Destination: fm.Destination, Files: fm.Files,
		})
	}
	state.Name, state.Version = m.scheme(state.ProviderID).NameAndVersion(strings.TrimSpace(l.Library))
	return state
}

func (m *Manifest) toEntry(state library.InstallationState) libraryJSON {
	l := libraryJSON{
		Library: m.LibraryID(state),
		Files:   state.Files,
	}
	if !state.IsUsingDefaultProvider {
		l.Provider = state.ProviderID
	}
	if !state.IsUsingDefaultDestination {
		l.Destination = state.DestinationPath
	}
	for _, fm := range state.FileMappings {
		l.FileMappings = append(l.FileMappings, fileMappingJSON(fm))
	}
	return l
}

// MarshalJSON renders the manifest in libman.json form. Inherited
// providers and destinations are omitted so defaults stay defaults.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	raw := manifestJSON{
		Version:            m.Version,
		DefaultProvider:    m.DefaultProvider,
		DefaultDestination: m.DefaultDestination,
		Libraries:          make([]libraryJSON, 0, len(m.libraries)),
	}
	for _, l := range m.libraries {
		raw.Libraries = append(raw.Libraries, m.toEntry(l))
	}
	return json.MarshalIndent(raw, "", "  ")
}

// Save writes the manifest to path through the host.
func (m *Manifest) Save(ctx context.Context, path string) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return m.deps.Host().WriteFile(ctx, path, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}
