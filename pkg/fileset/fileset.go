// Package fileset expands a manifest entry's file filters against the file
// list of a library.
//
// Filters are applied in declaration order. A plain path adds that file if
// the library contains it; a glob adds every matching file; a pattern with a
// leading "!" removes whatever it matches from the set built so far. The
// result is sorted, so the same inputs always produce the same plan.
package fileset

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Result is the outcome of an expansion.
type Result struct {
	// Files are the selected library files, sorted.
	Files []string
	// Invalid holds literal filters naming files the library does not have.
	Invalid []string
}

// IsGlob reports whether pattern contains glob metacharacters.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Normalize converts a library path to its canonical form: forward slashes
// and no leading "./" or "/".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return strings.TrimLeft(p, "/")
}

// Expand selects files from available according to patterns. An empty
// pattern list selects every file.
func Expand(available, patterns []string) Result {
	all := make([]string, 0, len(available))
	present := make(map[string]bool, len(available))
	for _, f := range available {
		n := Normalize(f)
		if n == "" || present[n] {
			continue
		}
		present[n] = true
		all = append(all, n)
	}
	slices.Sort(all)

	if len(patterns) == 0 {
		return Result{Files: all}
	}

	selected := make(map[string]bool)
	var invalid []string
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		exclude := strings.HasPrefix(p, "!")
		if exclude {
			p = p[1:]
		}
		p = Normalize(p)

		switch {
		case exclude:
			for f := range selected {
				if match(p, f) {
					delete(selected, f)
				}
			}
		case IsGlob(p):
			for _, f := range all {
				if match(p, f) {
					selected[f] = true
				}
			}
		case present[p]:
			selected[p] = true
		default:
			invalid = append(invalid, raw)
		}
	}

	files := make([]string, 0, len(selected))
	for f := range selected {
		files = append(files, f)
	}
	slices.Sort(files)
	return Result{Files: files, Invalid: invalid}
}

// match reports whether name matches pattern. Invalid patterns match
// nothing; literal patterns compare exactly.
func match(pattern, name string) bool {
	if !IsGlob(pattern) {
		return pattern == name
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// UnderRoot returns the files below root with root stripped, keeping sort
// order. An empty root returns files unchanged.
func UnderRoot(files []string, root string) []string {
	root = strings.TrimSuffix(Normalize(root), "/")
	if root == "" {
		return slices.Clone(files)
	}
	prefix := root + "/"
	var out []string
	for _, f := range files {
		if rel, ok := strings.CutPrefix(f, prefix); ok && rel != "" {
			out = append(out, rel)
		}
	}
	return out
}
