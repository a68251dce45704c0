package llm

import (
	"errors"
	"fmt"
)

// ErrNoCredential is returned by New when no API key is configured. Callers
// treat it as a request to run without the remote path.
var ErrNoCredential = errors.New("no API credential configured")

// Kind classifies a failed extraction attempt.
type Kind int

const (
	// KindTransport covers network failures, timeouts and non-auth API errors.
	KindTransport Kind = iota + 1
	// KindAuth means the credential was rejected; retrying cannot succeed.
	KindAuth
	// KindSchema means the model answered but the payload was unusable.
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindSchema:
		return "schema"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type returned by Client.Extract.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	return e.Kind != KindAuth
}

func transportErr(format string, args ...any) error {
	return &Error{Kind: KindTransport, Err: fmt.Errorf(format, args...)}
}

func authErr(format string, args ...any) error {
	return &Error{Kind: KindAuth, Err: fmt.Errorf(format, args...)}
}

func schemaErr(format string, args ...any) error {
	return &Error{Kind: KindSchema, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind carried by err, or KindTransport for any error
// that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}
