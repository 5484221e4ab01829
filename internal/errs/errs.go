// Package errs defines the node's error taxonomy.
//
// Every error the replication engine or the HTTP façade can produce
// falls into one of a small number of kinds, each carrying a stable,
// machine-readable Kind string so client-facing handlers can return
// structured JSON instead of an opaque message.
package errs

import "fmt"

// Kind identifies one of the error categories.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindNotFound   Kind = "not_found"
	KindTransport  Kind = "replication_transport_error"
	KindProtocol   Kind = "protocol_error"
	KindFatal      Kind = "fatal_error"
)

// Error is a typed error carrying a stable Kind plus a human message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation builds a KindValidation error — malformed request,
// missing key, CREATE on an existing key.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error — GET/UPDATE on an unknown key.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Transport builds a KindTransport error — peer unreachable, timeout,
// non-2xx. Callers retry these with backoff; they are never returned
// to an HTTP client directly.
func Transport(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Protocol builds a KindProtocol error — a received Operation
// references an unknown node id or has a malformed clock shape. The
// caller must log and drop the operation, never enqueue it.
func Protocol(format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, args...)}
}

// Fatal builds a KindFatal error — vector-clock overflow or an
// invariant violation detected at runtime. The process should abort.
func Fatal(format string, args ...any) *Error {
	return &Error{Kind: KindFatal, Message: fmt.Sprintf(format, args...)}
}

// As reports whether err is an *Error and returns it.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
