// Package errors provides the coded error type shared by every libman layer.
//
// Codes are stable strings ("LIB002", "LIB018", ...) that hosts key off of:
// the CLI decides its exit status and the editor integration routes entries
// to its error list based on them. They are part of the wire contract and
// must never be renumbered.
//
// # Usage
//
//	err := errors.UnableToResolveSource("jquery@3.3.1", "cdnjs")
//	if errors.Is(err, errors.CodeUnableToResolveSource) {
//	    // library or version does not exist
//	}
//
//	// Wrap an underlying failure
//	err := errors.Wrap(errors.CodeCouldNotWriteFile, ioErr, "could not write %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes. Values are part of the public contract.
const (
	CodeUnknownException             Code = "LIB000"
	CodeProviderUnknown              Code = "LIB001"
	CodeUnableToResolveSource        Code = "LIB002"
	CodeCouldNotWriteFile            Code = "LIB003"
	CodeManifestMalformed            Code = "LIB004"
	CodeCouldNotDeleteLibrary        Code = "LIB005"
	CodePathOutsideWorkingDirectory  Code = "LIB006"
	CodeProviderIsUndefined          Code = "LIB007"
	CodeVersionIsNotSupported        Code = "LIB009"
	CodeLibraryIDIsUndefined         Code = "LIB010"
	CodeFailedToDownloadResource     Code = "LIB014"
	CodeDuplicateLibrariesInManifest Code = "LIB016"
	CodeInvalidFilesInLibrary        Code = "LIB018"
	CodeLibraryAlreadyInstalled      Code = "LIB019"
	CodeFileMappingRootNotFound      Code = "LIB020"
	CodeDestinationNotSpecified      Code = "LIB021"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// From converts an arbitrary error into a coded Error. Errors that already
// carry a code are returned unchanged; everything else becomes LIB000.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return UnknownException(err)
}

// UnknownException reports an unexpected failure.
func UnknownException(cause error) *Error {
	return Wrap(CodeUnknownException, cause, "an unexpected error occurred")
}

// ProviderUnknown reports a provider id that no registered provider answers to.
func ProviderUnknown(providerID string) *Error {
	return New(CodeProviderUnknown, "the %q provider could not be found", providerID)
}

// UnableToResolveSource reports a library that its provider cannot resolve.
func UnableToResolveSource(libraryID, providerID string) *Error {
	return New(CodeUnableToResolveSource, "the library %q could not be resolved by the %q provider", libraryID, providerID)
}

// CouldNotWriteFile reports a failed write of one destination file.
func CouldNotWriteFile(path string, cause error) *Error {
	return Wrap(CodeCouldNotWriteFile, cause, "the file %q could not be written", path)
}

// ManifestMalformed reports a manifest that cannot be parsed.
func ManifestMalformed(cause error) *Error {
	return Wrap(CodeManifestMalformed, cause, "the manifest file contains syntax errors")
}

// CouldNotDeleteLibrary reports a failed clean of an installed library.
func CouldNotDeleteLibrary(libraryID string, cause error) *Error {
	return Wrap(CodeCouldNotDeleteLibrary, cause, "the library %q could not be deleted", libraryID)
}

// PathOutsideWorkingDirectory reports a destination that resolves outside
// the project root.
func PathOutsideWorkingDirectory(path string) *Error {
	return New(CodePathOutsideWorkingDirectory, "the path %q is outside the working directory", path)
}

// ProviderIsUndefined reports an entry with no provider and no manifest default.
func ProviderIsUndefined() *Error {
	return New(CodeProviderIsUndefined, "the \"provider\" property is undefined and no default provider is specified")
}

// VersionIsNotSupported reports an unrecognized manifest schema version.
func VersionIsNotSupported(version string) *Error {
	return New(CodeVersionIsNotSupported, "the manifest version %q is not supported", version)
}

// LibraryIDIsUndefined reports an entry without a library value.
func LibraryIDIsUndefined() *Error {
	return New(CodeLibraryIDIsUndefined, "the \"library\" property is undefined")
}

// FailedToDownloadResource reports a network fetch that failed.
func FailedToDownloadResource(url string, cause error) *Error {
	return Wrap(CodeFailedToDownloadResource, cause, "failed to download resource %q", url)
}

// DuplicateLibrariesInManifest reports a library declared more than once.
func DuplicateLibrariesInManifest(libraryID string) *Error {
	return New(CodeDuplicateLibrariesInManifest, "the library %q is declared more than once in the manifest", libraryID)
}

// InvalidFilesInLibrary reports literal file filters that the library does
// not contain. The message lists the valid files to help fix the manifest.
func InvalidFilesInLibrary(libraryID string, invalid, valid []string) *Error {
	msg := fmt.Sprintf("the %q library does not contain the files: %s", libraryID, strings.Join(invalid, ", "))
	if len(valid) > 0 {
		msg += fmt.Sprintf("; valid files are: %s", strings.Join(valid, ", "))
	}
	return &Error{Code: CodeInvalidFilesInLibrary, Message: msg}
}

// LibraryAlreadyInstalled reports an install of a library the manifest already declares.
func LibraryAlreadyInstalled(libraryID string) *Error {
	return New(CodeLibraryAlreadyInstalled, "the library %q is already installed", libraryID)
}

// FileMappingRootNotFound reports a fileMappings root with no matching library files.
func FileMappingRootNotFound(libraryID, root string) *Error {
	return New(CodeFileMappingRootNotFound, "the library %q has no files under the mapping root %q", libraryID, root)
}

// DestinationNotSpecified reports an entry with no destination and no manifest default.
func DestinationNotSpecified(libraryID string) *Error {
	return New(CodeDestinationNotSpecified, "the \"destination\" property for %q is not specified and there is no default destination", libraryID)
}
