// Package apierr names the closed error taxonomy from the pipeline's error
// handling design: a small set of sentinel kinds that HTTP handlers match
// on to pick a status code, instead of inspecting error strings.
package apierr

import "errors"

// Kind is one of the taxonomy entries from spec.md §7.
type Kind string

const (
	KindBadRequest         Kind = "bad_request"
	KindUpstreamTransient  Kind = "upstream_transient"
	KindUpstreamAuth       Kind = "upstream_auth"
	KindNoMatch            Kind = "no_match"
	KindInvalidYear        Kind = "invalid_year"
	KindStoreUnavailable   Kind = "store_unavailable"
	KindQueuePublishFailed Kind = "queue_publish_failed"
)

// Error wraps an underlying error with a taxonomy Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with kind. A nil err still produces a matchable Error.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
