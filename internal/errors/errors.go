// Package errors provides the structured error types used across artdiff.
//
// Base errors are sentinel values that classify a failure. Wrapped error
// types carry the context needed to report the failure to the user and
// unwrap to their sentinel so callers can branch with errors.Is.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - run, artifact or cache entry not found
//   - ErrInvalid - validation failed
//   - ErrIO - local file I/O error
//   - ErrCanceled - user interrupted the operation
//   - ErrTransport - network or remote API failure
//   - ErrFormat - archive or lock document did not parse
//   - ErrAbsent - no artifact of the requested kind is available
//
// Wrapped error types (add context):
//   - ResolutionError{Project, Workflow, Runs, Pages} - runs not found in the listing
//   - TransportError{Op, URL, Status, Err} - HTTP failures
//   - FormatError{Path, Kind, Err} - malformed archives or lock documents
//   - CacheError{Key, Op, Err} - cache entry failures
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	return &errors.TransportError{Op: "list runs", URL: u, Status: resp.StatusCode}
//
//	if errors.IsTransport(err) {
//	    // surface to the user, never retried
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates a run, artifact or cache entry was not found.
	ErrNotFound = baseError("not found")

	// ErrInvalid indicates validation failed.
	ErrInvalid = baseError("invalid")

	// ErrIO indicates a local file I/O error.
	ErrIO = baseError("I/O error")

	// ErrCanceled indicates the user canceled an operation.
	ErrCanceled = baseError("canceled")

	// ErrTransport indicates a network or remote API failure.
	ErrTransport = baseError("transport error")

	// ErrFormat indicates an archive or lock document is malformed.
	ErrFormat = baseError("format error")

	// ErrAbsent indicates no artifact of a kind exists for one side.
	ErrAbsent = baseError("absent")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// Exit codes returned by the CLI.
const (
	ExitSuccess   = 0   // Success, including "no differences"
	ExitGeneric   = 1   // Generic error
	ExitTransport = 2   // Network or API error
	ExitNotFound  = 3   // Run or artifact could not be located
	ExitFormat    = 4   // Archive or lock document did not parse
	ExitAborted   = 130 // Interrupted by the user
)

// ResolutionError reports runs missing from the searched listing pages.
type ResolutionError struct {
	Project  string
	Workflow string
	// Runs are the run numbers that were not located.
	Runs []int
	// Pages is the number of listing pages searched.
	Pages int
}

func (e *ResolutionError) Error() string {
	runs := make([]string, len(e.Runs))
	for i, r := range e.Runs {
		runs[i] = fmt.Sprintf("#%d", r)
	}
	return fmt.Sprintf("run %s of %s/%s not found in the first %d page(s) of completed runs",
		strings.Join(runs, ", "), e.Project, e.Workflow, e.Pages)
}

func (e *ResolutionError) Unwrap() error { return ErrNotFound }

// TransportError represents a failed request to the remote API.
type TransportError struct {
	// Op is the operation being performed (e.g., "list runs", "download").
	Op string
	// URL is the requested URL.
	URL string
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Err is the underlying error (optional).
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: transport error", e.Op, e.URL)
}

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError represents an archive or document that did not parse.
type FormatError struct {
	// Path is the file being read.
	Path string
	// Kind names the expected format (e.g., "wheel", "pixi lock").
	Kind string
	// Err is the underlying error.
	Err error
}

func (e *FormatError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

// Is makes every FormatError match ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func (e *FormatError) Unwrap() error { return e.Err }

// CacheError represents an error while reading or populating a cache entry.
type CacheError struct {
	// Key is the cache key rendered as its directory name.
	Key string
	// Op is the cache operation (e.g., "invalidate", "commit").
	Op string
	// Err is the underlying error.
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %s", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// ConfigError represents an error related to configuration.
type ConfigError struct {
	// Path is the configuration file path (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Wrap adds context to an error by wrapping it with an operation name.
// The returned error implements Unwrap() allowing errors.Is and errors.As
// to work with the wrapped error.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{op: op, err: err}
}

// wrappedError is an error with an operation context.
type wrappedError struct {
	op  string
	err error
}

func (e *wrappedError) Error() string { return fmt.Sprintf("%s: %s", e.op, e.err) }
func (e *wrappedError) Unwrap() error { return e.err }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsCanceled reports whether err is or wraps ErrCanceled or a context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsTransport reports whether err is or wraps ErrTransport.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsFormat reports whether err is or wraps ErrFormat.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsAbsent reports whether err is or wraps ErrAbsent.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrAbsent)
}

// AsResolutionError reports whether err can be typed as a *ResolutionError.
func AsResolutionError(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// AsTransportError reports whether err can be typed as a *TransportError.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// AsFormatError reports whether err can be typed as a *FormatError.
func AsFormatError(err error) (*FormatError, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// AsConfigError reports whether err can be typed as a *ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsCanceled(err):
		return ExitAborted
	case IsTransport(err):
		return ExitTransport
	case IsNotFound(err), IsAbsent(err):
		return ExitNotFound
	case IsFormat(err):
		return ExitFormat
	}
	return ExitGeneric
}
