// Package apperr defines the error kinds that cross the service boundary and
// how each one is reported over HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindUnauthenticated   Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindSelfDelete        Kind = "CANNOT_DELETE_SELF"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInvalidTransition Kind = "INVALID_STATUS_TRANSITION"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindSelfDelete:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Resource names the entity for NOT_FOUND errors ("item", "order", ...).
	Resource string
	Details  interface{}
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err,
// apperr.Forbidden()) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func Validation(details interface{}) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Details: details}
}

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "authentication required"}
}

func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "forbidden"}
}

func SelfDelete() *Error {
	return &Error{Kind: KindSelfDelete, Message: "cannot delete your own account"}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found", Resource: resource}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot change status from %s to %s", from, to),
		Details: map[string]string{"from": from, "to": to},
	}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf classifies err. Anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
