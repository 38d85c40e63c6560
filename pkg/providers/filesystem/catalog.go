package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
)

// Catalog resolves paths on disk. It has no versions.
type Catalog struct {
	host library.Host
}

// Search returns a single group named after term.
func (c *Catalog) Search(_ context.Context, term string, _ int) ([]library.Group, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	return []library.Group{{DisplayName: term}}, nil
}

// GetLibrary lists the files of a directory, or the single file a path or
// URL names. version is ignored.
func (c *Catalog) GetLibrary(ctx context.Context, name, _ string) (*library.Library, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if strings.TrimSpace(name) == "" {
		return nil, c.invalid(name, nil)
	}
	lib := &library.Library{Name: name, ProviderID: ID, Files: map[string]bool{}}
	if liberrors.IsURL(name) {
		lib.Files[sourceBase(name)] = true
		return lib, nil
	}

	root := resolve(c.host.WorkingDirectory(), name)
	info, err := os.Stat(root)
	if err != nil {
		return nil, c.invalid(name, err)
	}
	if !info.IsDir() {
		lib.Files[info.Name()] = true
		return lib, nil
	}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		lib.Files[filepath.ToSlash(rel)] = false
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, c.invalid(name, err)
	}
	return lib, nil
}

// GetLatestVersion always answers "": local files have no versions.
func (c *Catalog) GetLatestVersion(context.Context, string, bool) (string, error) {
	return "", nil
}

// Versions is always empty.
func (c *Catalog) Versions(context.Context, string) ([]string, error) {
	return nil, nil
}

// CompletionSet completes the path segment under the caret with the
// entries of its parent directory. Directories come first, with a
// trailing "/".
func (c *Catalog) CompletionSet(ctx context.Context, libraryIDStart string, caret int) (library.CompletionSet, error) {
	caret = min(max(caret, 0), len(libraryIDStart))
	typed := libraryIDStart[:caret]
	start := strings.LastIndexAny(typed, `/\`) + 1
	set := library.CompletionSet{Start: start, Length: len(libraryIDStart) - start, Type: library.CompletionFolder}
	if liberrors.IsURL(libraryIDStart) {
		return set, nil
	}

	dir := resolve(c.host.WorkingDirectory(), typed[:start])
	if start == 0 {
		dir = c.host.WorkingDirectory()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return set, nil
	}
	prefix := strings.ToLower(typed[start:])

	var dirs, files []library.CompletionItem
	for _, e := range entries {
		if ctx.Err() != nil {
			return set, ctx.Err()
		}
		if !strings.HasPrefix(strings.ToLower(e.Name()), prefix) {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, library.CompletionItem{DisplayText: e.Name() + "/", InsertionText: e.Name() + "/"})
		} else {
			files = append(files, library.CompletionItem{DisplayText: e.Name(), InsertionText: e.Name()})
		}
	}
	set.Completions = slices.Concat(dirs, files)
	return set, nil
}

func (c *Catalog) invalid(name string, err error) error {
	return &library.InvalidLibraryError{LibraryID: name, ProviderID: ID, Err: err}
}

var _ library.Catalog = (*Catalog)(nil)
