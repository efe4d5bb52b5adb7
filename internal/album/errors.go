package album

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindTransport
	KindMalformed
	KindSinkUnavailable
	KindSchemaMismatch
	KindPartialLoad
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport failure"
	case KindMalformed:
		return "malformed payload"
	case KindSinkUnavailable:
		return "sink unavailable"
	case KindSchemaMismatch:
		return "schema mismatch"
	case KindPartialLoad:
		return "partial load"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline failure.
//
// Errors match each other with errors.Is when their kinds are equal, so
// callers can test against the Err* sentinels below.
type Error struct {
	Kind Kind
	Op   string // what was being done, e.g. "history[3].album" or "insert albums"
	Err  error
}

// Error returns the error message.
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	// ErrTransportFailure: the API could not be reached or answered non-2xx.
	ErrTransportFailure = &Error{Kind: KindTransport}

	// ErrMalformedPayload: the API answered but required fields are
	// missing or have the wrong shape.
	ErrMalformedPayload = &Error{Kind: KindMalformed}

	// ErrSinkUnavailable: the store could not be opened or written.
	ErrSinkUnavailable = &Error{Kind: KindSinkUnavailable}

	// ErrSchemaMismatch: a row does not fit the persisted schema.
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}

	// ErrPartialLoad: current_album was replaced but albums was not, so
	// the two tables disagree until the next successful run.
	ErrPartialLoad = &Error{Kind: KindPartialLoad}
)

// Transport wraps err as a transport failure.
func Transport(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// Malformed reports a payload violation at the given field path.
func Malformed(field string, format string, args ...interface{}) error {
	return &Error{Kind: KindMalformed, Op: field, Err: fmt.Errorf(format, args...)}
}

// SinkUnavailable wraps err as a sink failure.
func SinkUnavailable(op string, err error) error {
	return &Error{Kind: KindSinkUnavailable, Op: op, Err: err}
}

// SchemaMismatch reports a row that does not fit the schema.
func SchemaMismatch(field string, format string, args ...interface{}) error {
	return &Error{Kind: KindSchemaMismatch, Op: field, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
