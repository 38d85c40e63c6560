package library

import (
	"context"
	"errors"

	liberrors "github.com/matzehuels/libman/pkg/errors"
)

// OperationResult is the envelope every catalog, provider and engine
// operation returns. Success is derived, so a successful result can never
// carry errors or be cancelled.
type OperationResult[T any] struct {
	Value     T
	Errors    []*liberrors.Error
	Cancelled bool
	// UpToDate is set by installs that found every planned file already
	// in place and wrote nothing.
	UpToDate bool
}

// Success reports whether the operation completed without errors and was
// not cancelled.
func (r OperationResult[T]) Success() bool {
	return !r.Cancelled && len(r.Errors) == 0
}

// Ok returns a successful result carrying v.
func Ok[T any](v T) OperationResult[T] {
	return OperationResult[T]{Value: v}
}

// Fail returns a failed result carrying v and errs.
func Fail[T any](v T, errs ...*liberrors.Error) OperationResult[T] {
	return OperationResult[T]{Value: v, Errors: errs}
}

// Cancelled returns a cancelled result carrying v.
func Cancelled[T any](v T) OperationResult[T] {
	return OperationResult[T]{Value: v, Cancelled: true}
}

// IsCancellation reports whether err stems from context cancellation or
// deadline expiry.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// InvalidLibraryError reports that a catalog cannot resolve a library id.
type InvalidLibraryError struct {
	LibraryID  string
	ProviderID string
	Err        error
}

func (e *InvalidLibraryError) Error() string {
	msg := "invalid library " + e.LibraryID + " for provider " + e.ProviderID
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidLibraryError) Unwrap() error { return e.Err }

// Coded converts the failure into its LIB002 form.
func (e *InvalidLibraryError) Coded() *liberrors.Error {
	err := liberrors.UnableToResolveSource(e.LibraryID, e.ProviderID)
	err.Cause = e.Err
	return err
}
