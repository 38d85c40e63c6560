package providers

import (
	"bytes"
	"context"
	"io"
	"os"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/observability"
)

// OpenFunc opens a goal-state source for reading.
type OpenFunc func(ctx context.Context, source string) (io.ReadCloser, error)

// WriteGoalState writes every planned file that differs from its source.
// Cancellation is checked before each file and ends the install as
// Cancelled. A destination outside the working directory aborts at once;
// other write failures are reported per file and the loop continues.
func WriteGoalState(ctx context.Context, host library.Host, goal *library.GoalState, open OpenFunc) library.OperationResult[library.InstallationState] {
	state := goal.State
	var errs []*liberrors.Error
	for _, dest := range goal.Destinations() {
		if ctx.Err() != nil {
			return library.Cancelled(state)
		}
		src := goal.InstalledFiles[dest]
		if FileUpToDate(dest, src) {
			continue
		}
		err := host.WriteFile(ctx, dest, func() (io.ReadCloser, error) { return open(ctx, src) })
		switch {
		case err == nil:
			observability.Restore().OnFileWritten(ctx, dest)
		case library.IsCancellation(err):
			return library.Cancelled(state)
		case liberrors.Is(err, liberrors.CodePathOutsideWorkingDirectory):
			return library.Fail(state, append(errs, liberrors.From(err))...)
		default:
			errs = append(errs, liberrors.CouldNotWriteFile(dest, err))
		}
	}
	return library.OperationResult[library.InstallationState]{Value: state, Errors: errs}
}

// IsGoalStateUpToDate reports whether every planned destination exists and
// matches its source file. It is re-evaluated on every call since
// destinations may have been edited by hand. A plan that selects no files
// has nothing to write and is up to date.
func IsGoalStateUpToDate(goal *library.GoalState) bool {
	if goal == nil {
		return false
	}
	for dest, src := range goal.InstalledFiles {
		if !FileUpToDate(dest, src) {
			return false
		}
	}
	return true
}

// FileUpToDate reports whether dest and src both exist on disk with the
// same size and the same bytes.
func FileUpToDate(dest, src string) bool {
	di, err := os.Stat(dest)
	if err != nil || di.IsDir() {
		return false
	}
	si, err := os.Stat(src)
	if err != nil || si.IsDir() || si.Size() != di.Size() {
		return false
	}
	a, err := os.ReadFile(dest)
	if err != nil {
		return false
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}
