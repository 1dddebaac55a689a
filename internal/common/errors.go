package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can react without parsing messages
type ErrorKind string

const (
	// KindConfiguration: missing or invalid credentials/settings; no network call was made
	KindConfiguration ErrorKind = "configuration"
	// KindTransport: the HTTP client failed, or the remote answered with a non-2xx status
	KindTransport ErrorKind = "transport"
	// KindNotFound: the request succeeded but matched nothing
	KindNotFound ErrorKind = "not_found"
	// KindValidation: caller input was rejected before use
	KindValidation ErrorKind = "validation"
)

// Error is the typed error returned by services
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a kind and operation name
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a typed error from a format string
func Errorf(kind ErrorKind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
