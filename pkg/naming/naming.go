// Package naming converts between library ids and (name, version) pairs.
//
// Two schemes exist:
//
//   - [Simple]: the id is the name; there is no version segment. Used by the
//     filesystem provider, whose library names are paths or URLs.
//   - [Versioned]: "name@version". npm-scoped names start with "@"
//     ("@types/react@1.0.0"), so the separator is the last "@" that is not
//     the leading scope marker.
package naming

import "strings"

// Scheme converts library ids to and from (name, version) pairs.
type Scheme interface {
	// LibraryID builds the canonical id for name and version.
	LibraryID(name, version string) string
	// NameAndVersion splits a library id. The version is empty when the id
	// carries none.
	NameAndVersion(libraryID string) (name, version string)
	// IsValidLibraryID reports whether libraryID is acceptable to the scheme.
	IsValidLibraryID(libraryID string) bool
}

// Simple is the version-less scheme: id == name.
type Simple struct{}

// LibraryID returns name; version is ignored.
func (Simple) LibraryID(name, _ string) string { return name }

// NameAndVersion returns the id as the name and an empty version.
func (Simple) NameAndVersion(libraryID string) (string, string) { return libraryID, "" }

// IsValidLibraryID reports whether libraryID is non-blank.
func (Simple) IsValidLibraryID(libraryID string) bool { return strings.TrimSpace(libraryID) != "" }

// Versioned is the "name@version" scheme.
type Versioned struct{}

// LibraryID joins name and version with "@". An empty version yields the
// bare name.
func (Versioned) LibraryID(name, version string) string {
	if name == "" {
		return ""
	}
	if version == "" {
		return name
	}
	return name + "@" + version
}

// NameAndVersion splits on the last "@" past index 0, so the scope marker
// of "@scope/name" is never mistaken for the separator.
func (Versioned) NameAndVersion(libraryID string) (string, string) {
	sep := VersionSeparator(libraryID)
	if sep < 0 {
		return libraryID, ""
	}
	return libraryID[:sep], libraryID[sep+1:]
}

// IsValidLibraryID reports whether libraryID has both a name and a version.
func (s Versioned) IsValidLibraryID(libraryID string) bool {
	name, version := s.NameAndVersion(libraryID)
	return strings.TrimSpace(name) != "" && strings.TrimSpace(version) != ""
}

// VersionSeparator returns the index of the "@" separating name from
// version in libraryID, or -1 when there is none. A leading "@" marks an
// npm scope and is never a separator.
func VersionSeparator(libraryID string) int {
	idx := strings.LastIndexByte(libraryID, '@')
	if idx <= 0 {
		return -1
	}
	return idx
}
