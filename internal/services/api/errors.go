// Package api implements the authenticated Cursor HTTP client and the
// per-endpoint accessors.
package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the refresh cycle's propagation policy.
type Kind int

const (
	// KindConfiguration means no credential is saved.
	KindConfiguration Kind = iota
	// KindAuth means the session token was rejected or the identity payload
	// was unusable.
	KindAuth
	// KindNetwork means the transport failed before a response arrived.
	KindNetwork
	// KindParsing means the response body was malformed or missing a
	// required field.
	KindParsing
	// KindAPI means a data endpoint returned a non-200 status.
	KindAPI
)

// String returns the kind's short label.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuth:
		return "authentication"
	case KindNetwork:
		return "network"
	case KindParsing:
		return "parsing"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Error is a classified API failure carrying a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification of err, or KindNetwork when err is not
// an *Error (transport failures surface as plain wrapped errors).
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}
