// Package filesystem provides the "filesystem" library provider: libraries
// are local files, local directories or http(s) URLs, copied into the
// project as they are.
package filesystem

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/libman/pkg/cache"
	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/fileset"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/naming"
	"github.com/matzehuels/libman/pkg/providers"
)

// ID is the provider id used in manifests.
const ID = "filesystem"

// Provider copies local files and URLs.
type Provider struct {
	*providers.Base
}

// New creates the provider. service downloads URL sources into the cache.
func New(host library.Host, service *cache.Service) *Provider {
	p := &Provider{}
	p.Base = providers.NewBase(ID, host, naming.Simple{}, service, nil, func() library.Catalog {
		return &Catalog{host: host}
	})
	return p
}

// SuggestedDestination is the base name of the source, without its
// extension for single-file libraries.
func (p *Provider) SuggestedDestination(lib *library.Library) string {
	if lib == nil {
		return ""
	}
	base := sourceBase(lib.Name)
	if isSingleFile(p.Host(), lib.Name) {
		return strings.TrimSuffix(base, path.Ext(base))
	}
	return base
}

// GoalState maps destinations to disk paths or URLs. A single-file
// library with exactly one literal filter is copied under that name,
// which allows renaming the file.
func (p *Provider) GoalState(ctx context.Context, desired library.InstallationState) library.OperationResult[*library.GoalState] {
	if ctx.Err() != nil {
		return library.Cancelled[*library.GoalState](nil)
	}
	if err := liberrors.ValidateSourcePath(desired.Name); err != nil {
		return library.Fail[*library.GoalState](nil, liberrors.From(err))
	}
	if strings.TrimSpace(desired.DestinationPath) == "" && len(desired.FileMappings) == 0 {
		return library.Fail[*library.GoalState](nil, liberrors.DestinationNotSpecified(desired.DisplayID()))
	}

	lib, err := p.Catalog().GetLibrary(ctx, desired.Name, "")
	if err != nil {
		if library.IsCancellation(err) {
			return library.Cancelled[*library.GoalState](nil)
		}
		return library.Fail[*library.GoalState](nil, providers.ResolveError(err, desired.Name, ID))
	}

	wd := p.Host().WorkingDirectory()
	state := desired.Clone()
	state.Version = ""
	goal := &library.GoalState{State: state, InstalledFiles: map[string]string{}}

	single := isSingleFile(p.Host(), desired.Name)
	if single && len(desired.FileMappings) == 0 && len(desired.Files) == 1 && isRename(desired.Files[0]) {
		rel := fileset.Normalize(desired.Files[0])
		if err := liberrors.ValidateRelativePath(rel); err != nil {
			return library.Fail[*library.GoalState](nil, liberrors.PathOutsideWorkingDirectory(rel))
		}
		dest := filepath.Join(filepath.FromSlash(desired.DestinationPath), filepath.FromSlash(rel))
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(wd, dest)
		}
		if !liberrors.ContainsPath(wd, dest) {
			return library.Fail[*library.GoalState](nil, liberrors.PathOutsideWorkingDirectory(dest))
		}
		goal.InstalledFiles[filepath.Clean(dest)] = p.source(desired.Name, "", true)
		return library.Ok(goal)
	}

	plan, fatal := providers.PlanFiles(wd, state, lib)
	if fatal != nil {
		return library.Fail[*library.GoalState](nil, fatal)
	}
	for dest, rel := range plan.Files {
		goal.InstalledFiles[dest] = p.source(desired.Name, rel, single)
	}
	return library.OperationResult[*library.GoalState]{Value: goal, Errors: plan.Errors}
}

// Install copies every planned file that differs from its source. URL
// sources are downloaded into the cache first.
func (p *Provider) Install(ctx context.Context, desired library.InstallationState) library.OperationResult[library.InstallationState] {
	goal := p.GoalState(ctx, desired)
	if goal.Cancelled {
		return library.Cancelled(desired)
	}
	if goal.Value == nil {
		return library.Fail(desired, goal.Errors...)
	}

	local := &library.GoalState{State: goal.Value.State, InstalledFiles: make(map[string]string, len(goal.Value.InstalledFiles))}
	var downloads []cache.Entry
	for dest, src := range goal.Value.InstalledFiles {
		if liberrors.IsURL(src) {
			cached := p.urlCachePath(src)
			downloads = append(downloads, cache.Entry{URL: src, Path: cached})
			src = cached
		}
		local.InstalledFiles[dest] = src
	}

	if len(downloads) == 0 && providers.IsGoalStateUpToDate(local) {
		return library.OperationResult[library.InstallationState]{Value: local.State, Errors: goal.Errors, UpToDate: true}
	}
	if err := p.Service().RefreshCache(ctx, downloads); err != nil {
		if library.IsCancellation(err) {
			return library.Cancelled(desired)
		}
		return library.Fail(desired, providers.ResolveError(err, desired.Name, ID))
	}
	if providers.IsGoalStateUpToDate(local) {
		return library.OperationResult[library.InstallationState]{Value: local.State, Errors: goal.Errors, UpToDate: true}
	}

	res := providers.WriteGoalState(ctx, p.Host(), local, func(_ context.Context, src string) (io.ReadCloser, error) {
		return os.Open(src)
	})
	res.Errors = append(goal.Errors, res.Errors...)
	return res
}

// source returns the disk path or URL of rel within the library name.
func (p *Provider) source(name, rel string, single bool) string {
	if liberrors.IsURL(name) {
		return name
	}
	root := resolve(p.Host().WorkingDirectory(), name)
	if single {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// urlCachePath keeps downloaded URL sources apart by a hash of the URL.
func (p *Provider) urlCachePath(rawURL string) string {
	h := cache.Hash([]byte(rawURL))[:16]
	return filepath.Join(p.Host().CacheDirectory(), ID, h, sourceBase(rawURL))
}

func isRename(filter string) bool {
	f := strings.TrimSpace(filter)
	return f != "" && !strings.HasPrefix(f, "!") && !fileset.IsGlob(f)
}

func isSingleFile(host library.Host, name string) bool {
	if liberrors.IsURL(name) {
		return true
	}
	info, err := os.Stat(resolve(host.WorkingDirectory(), name))
	return err == nil && !info.IsDir()
}

func resolve(workDir, name string) string {
	p := filepath.FromSlash(name)
	if !filepath.IsAbs(p) {
		p = filepath.Join(workDir, p)
	}
	return filepath.Clean(p)
}

// sourceBase is the last path element of a disk path or URL.
func sourceBase(name string) string {
	if liberrors.IsURL(name) {
		if u, err := url.Parse(name); err == nil {
			return path.Base(u.Path)
		}
	}
	return filepath.Base(filepath.FromSlash(strings.TrimRight(name, `/\`)))
}

var _ library.Provider = (*Provider)(nil)
