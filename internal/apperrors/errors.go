package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so handlers can map it to an HTTP status without
// inspecting message text.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
	KindInsufficientStock
	KindStorage
)

type Error struct {
	Kind    Kind
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

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying cause for logs while presenting message to callers.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error        { return New(KindValidation, message) }
func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Conflict(message string) *Error          { return New(KindConflict, message) }
func Unavailable(message string) *Error       { return New(KindUnavailable, message) }
func InsufficientStock(message string) *Error { return New(KindInsufficientStock, message) }
func Storage(message string, err error) *Error {
	return Wrap(KindStorage, message, err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Status maps an error to the HTTP status code handlers respond with.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindUnavailable, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message, hiding internals of foreign errors.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
