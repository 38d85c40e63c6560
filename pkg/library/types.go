package library

import (
	"maps"
	"slices"
	"strings"
)

// InstallationState is one library entry as declared in a manifest.
type InstallationState struct {
	Name            string
	Version         string
	ProviderID      string
	DestinationPath string
	// Files are include patterns; a leading "!" excludes. Nil or empty
	// selects every file in the library.
	Files []string
	// FileMappings, when present, replace Files: each mapping expands
	// independently relative to its own root and destination.
	FileMappings []FileMapping

	IsUsingDefaultProvider    bool
	IsUsingDefaultDestination bool
}

// FileMapping maps the files below Root (a library-relative directory) into
// Destination. An empty Destination means the entry's destination.
type FileMapping struct {
	Root        string
	Destination string
	Files       []string
}

// DisplayID returns "name@version" (or just the name when there is no
// version) for log and error messages.
func (s InstallationState) DisplayID() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + "@" + s.Version
}

// Clone returns a deep copy of s.
func (s InstallationState) Clone() InstallationState {
	c := s
	c.Files = slices.Clone(s.Files)
	if s.FileMappings != nil {
		c.FileMappings = make([]FileMapping, len(s.FileMappings))
		for i, m := range s.FileMappings {
			m.Files = slices.Clone(m.Files)
			c.FileMappings[i] = m
		}
	}
	return c
}

// Library is the resolved content of one library version.
type Library struct {
	Name       string
	ProviderID string
	Version    string
	// Files maps library-relative paths (forward slashes) to whether the
	// catalog marks the file as a default file.
	Files map[string]bool
}

// FileNames returns the library's file paths in sorted order.
func (l *Library) FileNames() []string {
	return slices.Sorted(maps.Keys(l.Files))
}

// Group is one search hit: a library name with its latest known version.
type Group struct {
	DisplayName   string
	Description   string
	LatestVersion string
}

// GoalState is the computed install plan for one entry.
type GoalState struct {
	State InstallationState
	// InstalledFiles maps absolute destination paths to source identifiers:
	// a cache file path for CDN providers, a disk path or URL for the
	// filesystem provider.
	InstalledFiles map[string]string
}

// Destinations returns the planned destination paths in sorted order.
func (g *GoalState) Destinations() []string {
	return slices.Sorted(maps.Keys(g.InstalledFiles))
}

// CompletionType tells a completion consumer what the span holds.
type CompletionType int

// Completion types.
const (
	CompletionUnknown CompletionType = iota
	CompletionName
	CompletionVersion
	CompletionFolder
)

// String returns the completion type name.
func (t CompletionType) String() string {
	switch t {
	case CompletionName:
		return "name"
	case CompletionVersion:
		return "version"
	case CompletionFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// CompletionItem is one completion candidate.
type CompletionItem struct {
	DisplayText   string
	InsertionText string
	Description   string
}

// CompletionSet describes a replaceable span of the input and its ranked
// candidates.
type CompletionSet struct {
	Start       int
	Length      int
	Completions []CompletionItem
	Type        CompletionType
}

// LatestVersionTag is the synthetic version offered last in version completions.
const LatestVersionTag = "latest"

// IsLatestTag reports whether version is the "latest" alias.
func IsLatestTag(version string) bool {
	return strings.EqualFold(strings.TrimSpace(version), LatestVersionTag)
}
