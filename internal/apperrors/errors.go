package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies application errors so handlers can map them to HTTP statuses
type Kind int

const (
	// KindUnknown - unclassified error, treated as an internal failure
	KindUnknown Kind = iota

	// KindInvalidArgument - a required field is missing or malformed
	KindInvalidArgument

	// KindNotFound - the operation targets an entity or document that does not exist.
	// An absent document read as an empty default is NOT this error.
	KindNotFound

	// KindIOFailure - reading or writing persisted state failed; prior state is intact
	KindIOFailure

	// KindConflict - reserved for optimistic-concurrency saves
	KindConflict
)

// String returns a human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindIOFailure:
		return "io_failure"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a classified application error with an optional wrapped cause
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidArgument creates a new invalid-argument error
func InvalidArgument(message string) error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

// NotFound creates a new not-found error
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// IOFailure wraps a storage failure
func IOFailure(message string, cause error) error {
	return &Error{Kind: KindIOFailure, Message: message, Cause: cause}
}

// Conflict creates a new conflict error
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf extracts the Kind from an error chain, KindUnknown if unclassified
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsInvalidArgument reports whether err is classified as an invalid argument
func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}

// IsNotFound reports whether err is classified as not found
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsIOFailure reports whether err is classified as an I/O failure
func IsIOFailure(err error) bool {
	return KindOf(err) == KindIOFailure
}
