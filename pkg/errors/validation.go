package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateLibraryName rejects catalog names that could be used for
// injection into URLs or cache paths. Provider-specific grammar is checked
// by the providers.
//
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//   - No "." or ".." path segments, split on either slash
func ValidateLibraryName(name string) error {
	if err := ValidateSourcePath(name); err != nil {
		return err
	}
	if len(name) > 256 {
		return New(CodeUnableToResolveSource, "library name too long (max 256 characters)")
	}
	if hasDotSegment(name) {
		return New(CodeUnableToResolveSource, "library name %q contains a relative path segment", name)
	}
	return nil
}

// ValidateVersion rejects versions that would change the cache directory
// they are joined into. An empty version is accepted.
func ValidateVersion(version string) error {
	for _, r := range version {
		if unicode.IsControl(r) {
			return New(CodeUnableToResolveSource, "version contains invalid control characters")
		}
	}
	if strings.ContainsAny(version, `/\`) || version == "." || version == ".." {
		return New(CodeUnableToResolveSource, "invalid version %q", version)
	}
	return nil
}

// ValidateSourcePath checks a file-system library name. These are paths on
// the user's machine and may legitimately point outside the project, so
// only empty names and control characters are rejected.
func ValidateSourcePath(name string) error {
	if name == "" {
		return LibraryIDIsUndefined()
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(CodeUnableToResolveSource, "library name contains invalid control characters")
		}
	}
	return nil
}

func hasDotSegment(name string) bool {
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// ValidateRelativePath validates a library-relative file path taken from a
// remote catalog before it is used to build a cache or destination path.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - No absolute paths
//   - No ".." path segments
func ValidateRelativePath(path string) error {
	if path == "" {
		return New(CodeUnableToResolveSource, "path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(CodeUnableToResolveSource, "path contains invalid characters")
		}
	}
	slashed := filepath.ToSlash(path)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(path) {
		return PathOutsideWorkingDirectory(path)
	}
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return PathOutsideWorkingDirectory(path)
		}
	}
	return nil
}

// ContainsPath reports whether target is root itself or lies beneath it.
// Both paths are cleaned and made absolute before comparison.
func ContainsPath(root, target string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(CodeUnableToResolveSource, "URL cannot be empty")
	}
	if !IsURL(rawURL) {
		return New(CodeUnableToResolveSource, "URL must use http or https scheme")
	}
	return nil
}

// IsURL reports whether s looks like an http(s) URL.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
