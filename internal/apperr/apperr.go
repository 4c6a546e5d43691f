// Package apperr defines the error taxonomy shared by the ledger core and its adapters.
package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInvalidState     Code = "INVALID_STATE"
	CodePersistence      Code = "PERSISTENCE_FAILURE"
	CodeAuthentication   Code = "AUTHENTICATION_FAILED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeRateLimit        Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:       {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
	CodePermissionDenied: {HTTPStatus: http.StatusForbidden, PublicMessage: "permission denied"},
	CodeInvalidState:     {HTTPStatus: http.StatusConflict, PublicMessage: "transition not allowed", DetailsAllowed: true},
	CodePersistence:      {HTTPStatus: http.StatusServiceUnavailable, PublicMessage: "storage unavailable"},
	CodeAuthentication:   {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication failed"},
	CodeNotFound:         {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeRateLimit:        {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "too many requests"},
	CodeInternal:         {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal error"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	e := As(err)
	return e != nil && e.code == code
}

func Validation(message string) *Error { return New(CodeValidation, message) }
func Forbidden(message string) *Error { return New(CodePermissionDenied, message) }
func InvalidState(message string) *Error { return New(CodeInvalidState, message) }

func Persistence(err error, message string) *Error {
	return Wrap(CodePersistence, err, message)
}
