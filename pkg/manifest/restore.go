package manifest

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/observability"
	"github.com/matzehuels/libman/pkg/providers"
)

// RestoreConcurrency bounds how many entries install at once.
const RestoreConcurrency = 4

// Result is the outcome of one manifest entry.
type Result = library.OperationResult[library.InstallationState]

// Restore installs every entry and returns one result per entry in
// manifest order. Entries that fail validation are reported without
// reaching a provider; duplicates after the first declaration fail with
// LIB016 while the first still installs.
func (m *Manifest) Restore(ctx context.Context) []Result {
	start := time.Now()
	hooks := observability.Restore()
	hooks.OnRestoreStart(ctx, len(m.libraries))

	results := make([]Result, len(m.libraries))
	dups := m.duplicates()

	g := new(errgroup.Group)
	g.SetLimit(RestoreConcurrency)
	for i, state := range m.libraries {
		if err, ok := dups[i]; ok {
			results[i] = library.Fail(state, err)
			continue
		}
		p, verr := m.validate(state)
		if verr != nil {
			results[i] = library.Fail(state, verr)
			continue
		}
		g.Go(func() error {
			results[i] = m.restoreOne(ctx, p, state)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Success() {
			failed++
		}
	}
	hooks.OnRestoreComplete(ctx, len(results), failed, time.Since(start))
	return results
}

// RestoreLibrary installs a single entry through its provider after the
// same validation Restore applies.
func (m *Manifest) RestoreLibrary(ctx context.Context, state library.InstallationState) Result {
	p, err := m.validate(state)
	if err != nil {
		return library.Fail(state, err)
	}
	return m.restoreOne(ctx, p, state)
}

func (m *Manifest) restoreOne(ctx context.Context, p library.Provider, state library.InstallationState) Result {
	if ctx.Err() != nil {
		return library.Cancelled(state)
	}
	hooks := observability.Restore()
	id := m.LibraryID(state)
	start := time.Now()
	hooks.OnLibraryStart(ctx, p.ID(), id)

	res := p.Install(ctx, state)

	var err error
	if len(res.Errors) > 0 {
		err = res.Errors[0]
	} else if res.Cancelled {
		err = context.Canceled
	}
	hooks.OnLibraryComplete(ctx, p.ID(), id, res.UpToDate, time.Since(start), err)
	return res
}

// GoalStates computes the plan of every valid entry. Invalid entries and
// planning failures are returned in the errors slice; the map only holds
// entries that planned successfully.
func (m *Manifest) GoalStates(ctx context.Context) (map[int]*library.GoalState, []*liberrors.Error) {
	goals := map[int]*library.GoalState{}
	var errs []*liberrors.Error
	dups := m.duplicates()
	for i, state := range m.libraries {
		if _, dup := dups[i]; dup {
			continue
		}
		p, err := m.validate(state)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res := p.GoalState(ctx, state)
		if res.Cancelled {
			return goals, errs
		}
		errs = append(errs, res.Errors...)
		if res.Value != nil {
			goals[i] = res.Value
		}
	}
	return goals, errs
}

// Clean deletes every file the manifest's entries would install, pruning
// directories the deletion leaves empty. Files outside the computed goal
// states are never touched. One result is returned per entry.
func (m *Manifest) Clean(ctx context.Context) []Result {
	results := make([]Result, len(m.libraries))
	for i, state := range m.libraries {
		results[i] = m.cleanOne(ctx, state)
	}
	return results
}

func (m *Manifest) cleanOne(ctx context.Context, state library.InstallationState) Result {
	if ctx.Err() != nil {
		return library.Cancelled(state)
	}
	p, err := m.validate(state)
	if err != nil {
		return library.Fail(state, err)
	}
	goal := p.GoalState(ctx, state)
	if goal.Cancelled {
		return library.Cancelled(state)
	}
	if goal.Value == nil {
		return library.Fail(state, goal.Errors...)
	}
	if derr := m.deps.Host().DeleteFiles(ctx, goal.Value.Destinations()...); derr != nil {
		if library.IsCancellation(derr) {
			return library.Cancelled(state)
		}
		return library.Fail(state, liberrors.CouldNotDeleteLibrary(m.LibraryID(state), derr))
	}
	return library.Ok(state)
}

// FileResults pairs a manifest path with the outcome of restoring it.
type FileResults struct {
	Path     string
	Manifest *Manifest
	Results  []Result
	// Err is set when the manifest itself could not be read or parsed.
	Err error
}

// DependenciesFunc builds the provider set for a manifest rooted at dir.
type DependenciesFunc func(dir string) (*providers.Dependencies, error)

// RestoreFiles restores several manifests one after another, each against
// providers bound to the manifest's own directory. A manifest that cannot
// be loaded is reported and the rest still run.
func RestoreFiles(ctx context.Context, paths []string, newDeps DependenciesFunc) []FileResults {
	out := make([]FileResults, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			out = append(out, FileResults{Path: path, Err: ctx.Err()})
			continue
		}
		fr := FileResults{Path: path}
		deps, err := newDeps(filepath.Dir(path))
		if err != nil {
			fr.Err = err
			out = append(out, fr)
			continue
		}
		m, err := FromFile(path, deps)
		if err != nil {
			fr.Err = err
			out = append(out, fr)
			continue
		}
		fr.Manifest = m
		fr.Results = m.Restore(ctx)
		out = append(out, fr)
	}
	return out
}
