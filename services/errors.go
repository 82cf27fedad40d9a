package services

import (
	"errors"
	"fmt"

	"github.com/anvilworks/cms-api/repository"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindForbidden
	KindInvalidState
	KindConflict
	KindInternal
)

// Error is the service-level error returned by every operation. Controllers
// map Kind to an HTTP status; Message is safe to show to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the error kind, translating raw repository errors that
// escaped without wrapping.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return KindConflict
	}
	return KindInternal
}

// storeErr wraps a repository error, preserving not-found/duplicate kinds and
// folding everything else into an internal error. Service errors surfacing
// from a Mutate callback pass through unchanged.
func storeErr(err error, notFoundMsg string) error {
	var se *Error
	switch {
	case errors.As(err, &se):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return NotFoundf("%s", notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate):
		return Conflictf("duplicate record")
	default:
		return Internal(err)
	}
}
