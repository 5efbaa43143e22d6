// Package wire implements the generic envelope and value-encoding discipline
// shared by every Bot API call: the {ok, result|description} response wrapper,
// the ordered optional-field request object builder, and the multipart form
// encoder used by upload methods.
package wire

import (
	"errors"
	"fmt"
)

// Result carries the outcome of one remote call into a continuation.
// A failed Result holds either an *APIError (the remote answered ok:false)
// or a *DecodeError (the result field did not match the expected shape).
// Transport-level failures never become Results; they propagate as plain
// errors from the caller.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure. err must be non-nil.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool { return r.err == nil }

// Value returns the success value. It is the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Description returns the human-readable failure message, or "" on success.
func (r Result[T]) Description() string {
	if r.err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(r.err, &apiErr) {
		return apiErr.Description
	}
	return r.err.Error()
}

// APIError is an envelope-level failure: the remote answered ok:false.
type APIError struct {
	Description string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s", e.Description)
}

// DecodeError is a local failure: the result field could not be decoded
// into the expected shape. It is propagated through Results rather than
// panicking at the decode site.
type DecodeError struct {
	Expected string
	Cause    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Expected, e.Cause)
}

// Unwrap exposes the underlying JSON error.
func (e *DecodeError) Unwrap() error { return e.Cause }
