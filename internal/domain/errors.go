package domain

import "errors"

var (
	// ErrSetNotFound signals a missing set.
	ErrSetNotFound = errors.New("set not found")
	// ErrUnknownField signals a field name that is not part of the card schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnreachable signals that a fetch source could not be reached (retryable).
	ErrUnreachable = errors.New("source unreachable")
	// ErrMalformedRecord signals a raw record that failed normalization.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrEmptySet signals a fetch where zero records survived normalization.
	ErrEmptySet = errors.New("empty set")
	// ErrVersionUnchanged signals that the source reports the version already stored.
	ErrVersionUnchanged = errors.New("source version unchanged")

	// ErrConsistency signals an internal invariant violation between parse and
	// evaluate, e.g. schema drift. Always logged and surfaced, never swallowed.
	ErrConsistency = errors.New("consistency fault")
)
