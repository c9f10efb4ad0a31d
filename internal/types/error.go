package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a ledger call was rejected.
type ErrorKind string

const (
	ValidationError    ErrorKind = "VALIDATION_ERROR"
	StateError         ErrorKind = "STATE_ERROR"
	FundsError         ErrorKind = "FUNDS_ERROR"
	AuthorizationError ErrorKind = "AUTHORIZATION_ERROR"
	InternalError      ErrorKind = "INTERNAL_ERROR"
)

func (k ErrorKind) String() string {
	return string(k)
}

type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Error is returned by every rejected ledger call. Two errors are considered
// equal by errors.Is when their codes match, so sentinel values keep matching
// after extra context was attached with WithMsg.
type Error struct {
	Kind ErrorKind
	Code ErrorCode
	Err  error
}

func NewError(kind ErrorKind, code ErrorCode, err error) *Error {
	return &Error{
		Kind: kind,
		Code: code,
		Err:  err,
	}
}

func NewErrorWithMsg(kind ErrorKind, code ErrorCode, msg string) *Error {
	return &Error{
		Kind: kind,
		Code: code,
		Err:  errors.New(msg),
	}
}

func NewInternalError(err error) *Error {
	return &Error{
		Kind: InternalError,
		Code: "INTERNAL",
		Err:  err,
	}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMsg returns a copy of e whose message is extended with the formatted
// context.
func (e *Error) WithMsg(format string, args ...any) *Error {
	return &Error{
		Kind: e.Kind,
		Code: e.Code,
		Err:  fmt.Errorf("%w: %s", e.Err, fmt.Sprintf(format, args...)),
	}
}

// StatusCode maps the error kind onto the HTTP status used by the api package.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case ValidationError:
		return http.StatusBadRequest
	case StateError:
		return http.StatusConflict
	case FundsError:
		return http.StatusUnprocessableEntity
	case AuthorizationError:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// KindOf extracts the kind of err, InternalError for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalError
}
