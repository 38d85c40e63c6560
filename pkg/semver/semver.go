// Package semver parses and orders library version strings.
//
// Parsing is delegated to [github.com/Masterminds/semver/v3], which accepts
// the loose forms catalogs publish ("3.3", "v1.2.3", "2.0.0-beta2").
// Ordering follows semantic versioning precedence: major.minor.patch
// numerically, then pre-release identifiers dot by dot, and a release
// always ranks above a pre-release of the same major.minor.patch.
package semver

import (
	"fmt"
	"slices"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version that remembers its original text.
type Version struct {
	v *mmsemver.Version
}

// Parse parses text into a Version. Malformed input returns an error.
func Parse(text string) (*Version, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("semver: empty version")
	}
	v, err := mmsemver.NewVersion(text)
	if err != nil {
		return nil, fmt.Errorf("semver: parse %q: %w", text, err)
	}
	return &Version{v: v}, nil
}

// String returns the version as originally written.
func (v *Version) String() string { return v.v.Original() }

// Major returns the major component.
func (v *Version) Major() uint64 { return v.v.Major() }

// Minor returns the minor component.
func (v *Version) Minor() uint64 { return v.v.Minor() }

// Patch returns the patch component.
func (v *Version) Patch() uint64 { return v.v.Patch() }

// Prerelease returns the pre-release tag without the leading dash.
func (v *Version) Prerelease() string { return v.v.Prerelease() }

// IsPrerelease reports whether the version carries a pre-release tag.
func (v *Version) IsPrerelease() bool { return v.v.Prerelease() != "" }

// Compare returns -1, 0 or 1 when v is lower than, equal to, or greater
// than o. Build metadata is ignored.
func (v *Version) Compare(o *Version) int { return v.v.Compare(o.v) }

// GreaterThan reports whether v ranks above o.
func (v *Version) GreaterThan(o *Version) bool { return v.Compare(o) > 0 }

// Max returns the highest version in vs, or nil when vs is empty.
func Max(vs []*Version) *Version {
	var best *Version
	for _, v := range vs {
		if v == nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

// SortDescending orders version strings newest first. Strings that do not
// parse keep their relative order and sink below every valid version.
// The sort is stable so equal versions keep their input order.
func SortDescending(versions []string) []string {
	type entry struct {
		text string
		v    *Version
	}
	entries := make([]entry, len(versions))
	for i, s := range versions {
		v, _ := Parse(s)
		entries[i] = entry{text: s, v: v}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.v == nil && b.v == nil:
			return 0
		case a.v == nil:
			return 1
		case b.v == nil:
			return -1
		}
		return b.v.Compare(a.v)
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.text
	}
	return out
}

// Latest returns the newest version string in versions. When
// includePrerelease is false, pre-release versions are skipped. Returns ""
// when nothing qualifies.
func Latest(versions []string, includePrerelease bool) string {
	for _, s := range SortDescending(versions) {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		if !includePrerelease && v.IsPrerelease() {
			continue
		}
		return s
	}
	return ""
}
