package providers

import (
	"path"
	"path/filepath"
	"strings"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/fileset"
	"github.com/matzehuels/libman/pkg/library"
)

// Plan is the provider-independent part of a goal state: destination paths
// mapped to library-relative files.
type Plan struct {
	// Files maps absolute destination paths to library-relative sources.
	Files map[string]string
	// Errors are non-fatal planning problems (LIB018, LIB020). The
	// remaining files still install.
	Errors []*liberrors.Error
}

// PlanFiles expands desired's filters (or file mappings) against lib and
// anchors every selected file below its destination in workDir. A
// destination or file path escaping workDir fails the whole plan with
// LIB006 before anything is written.
func PlanFiles(workDir string, desired library.InstallationState, lib *library.Library) (*Plan, *liberrors.Error) {
	libID := desired.DisplayID()
	all := lib.FileNames()
	plan := &Plan{Files: make(map[string]string)}

	add := func(dest, rel, source string) *liberrors.Error {
		if err := liberrors.ValidateRelativePath(rel); err != nil {
			return liberrors.PathOutsideWorkingDirectory(rel)
		}
		abs := resolveDestination(workDir, dest, rel)
		if !liberrors.ContainsPath(workDir, abs) {
			return liberrors.PathOutsideWorkingDirectory(path.Join(filepath.ToSlash(dest), rel))
		}
		plan.Files[abs] = source
		return nil
	}

	if len(desired.FileMappings) == 0 {
		res := fileset.Expand(all, desired.Files)
		if len(res.Invalid) > 0 {
			plan.Errors = append(plan.Errors, liberrors.InvalidFilesInLibrary(libID, res.Invalid, all))
		}
		for _, f := range res.Files {
			if err := add(desired.DestinationPath, f, f); err != nil {
				return nil, err
			}
		}
		return plan, nil
	}

	for _, m := range desired.FileMappings {
		root := strings.TrimSuffix(fileset.Normalize(m.Root), "/")
		candidates := fileset.UnderRoot(all, root)
		if len(candidates) == 0 {
			plan.Errors = append(plan.Errors, liberrors.FileMappingRootNotFound(libID, m.Root))
			continue
		}
		dest := m.Destination
		if dest == "" {
			dest = desired.DestinationPath
		}
		res := fileset.Expand(candidates, m.Files)
		if len(res.Invalid) > 0 {
			plan.Errors = append(plan.Errors, liberrors.InvalidFilesInLibrary(libID, res.Invalid, candidates))
		}
		for _, f := range res.Files {
			source := f
			if root != "" {
				source = root + "/" + f
			}
			if err := add(dest, f, source); err != nil {
				return nil, err
			}
		}
	}
	return plan, nil
}

func resolveDestination(workDir, dest, rel string) string {
	p := filepath.Join(filepath.FromSlash(dest), filepath.FromSlash(rel))
	if !filepath.IsAbs(p) {
		p = filepath.Join(workDir, p)
	}
	return filepath.Clean(p)
}
