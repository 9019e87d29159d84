package common

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
	KindValidation   ErrorKind = "validation"
)

// Error is the structured failure every engine operation returns. Handlers
// recover these at the request boundary and surface kind + message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewInvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ErrorStatus maps an engine error to the HTTP status and kind to return.
// Anything that is not a *Error counts as an internal error.
func ErrorStatus(err error) (int, ErrorKind) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, ""
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound, e.Kind
	case KindConflict:
		return http.StatusConflict, e.Kind
	case KindInvalidState:
		return http.StatusUnprocessableEntity, e.Kind
	case KindValidation:
		return http.StatusBadRequest, e.Kind
	}
	return http.StatusInternalServerError, e.Kind
}
