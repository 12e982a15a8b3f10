// Package apperr is the failure taxonomy shared by services and handlers.
//
// Services return *Error for every expected failure. Anything else that
// escapes a service is an unexpected store or invariant failure and is
// surfaced to callers as Internal.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Code classifies a failure.
type Code string

const (
	Unauthenticated    Code = "unauthenticated"
	InvalidArgument    Code = "invalid-argument"
	NotFound           Code = "not-found"
	PermissionDenied   Code = "permission-denied"
	FailedPrecondition Code = "failed-precondition"
	AlreadyExists      Code = "already-exists"
	ResourceExhausted  Code = "resource-exhausted"
	Internal           Code = "internal"
)

// Error is a typed failure with a caller-safe message.
type Error struct {
	Code    Code
	Message string
	Err     error // cause, never shown to callers
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a failure with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap returns a failure carrying cause.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Err: cause}
}

// As extracts a typed failure from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the failure code of err, Internal for untyped errors and ""
// for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return Internal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Surface passes typed failures through unchanged and converts anything else
// into an Internal failure with msg, logging the original cause.
func Surface(err error, log *zap.Logger, msg string, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	if log != nil {
		log.Error(msg, append(fields, zap.Error(err))...)
	}
	return Wrap(Internal, msg, err)
}

// HTTPStatus maps a code onto the response status used by the JSON API.
func HTTPStatus(code Code) int {
	switch code {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case PermissionDenied:
		return http.StatusForbidden
	case FailedPrecondition:
		return http.StatusPreconditionFailed
	case AlreadyExists:
		return http.StatusConflict
	case ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
