package domain

import (
	"errors"
	"net/http"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindMissingInput        ErrorKind = "missing_input"
	KindInvalidLocation     ErrorKind = "invalid_location"
	KindReverseLookupFailed ErrorKind = "reverse_lookup_failed"
	KindRoutingUnavailable  ErrorKind = "routing_unavailable"
	KindSearchUnavailable   ErrorKind = "search_unavailable"
	KindFormattingFailed    ErrorKind = "formatting_failed"
	KindConfiguration       ErrorKind = "configuration_error"
	KindInternal            ErrorKind = "internal_error"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrMissingInput        = &Error{Kind: KindMissingInput}
	ErrInvalidLocation     = &Error{Kind: KindInvalidLocation}
	ErrReverseLookupFailed = &Error{Kind: KindReverseLookupFailed}
	ErrRoutingUnavailable  = &Error{Kind: KindRoutingUnavailable}
	ErrSearchUnavailable   = &Error{Kind: KindSearchUnavailable}
	ErrFormattingFailed    = &Error{Kind: KindFormattingFailed}
	ErrConfiguration       = &Error{Kind: KindConfiguration}
)

// Error is a classified pipeline failure. Message is safe to show to callers.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code returned to callers.
// Input validation failures are 400; everything downstream is 500.
func HTTPStatus(err error) int {
	if KindOf(err) == KindMissingInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
