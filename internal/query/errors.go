package query

import "fmt"

// ParseErrorKind classifies a query parse failure.
type ParseErrorKind string

// Parse failure kinds. All of them are user-correctable and surfaced to the
// caller verbatim.
const (
	ParseEmptyQuery   ParseErrorKind = "empty_query"
	ParseUnknownField ParseErrorKind = "unknown_field"
	ParseTypeMismatch ParseErrorKind = "type_mismatch"
	ParseSyntax       ParseErrorKind = "syntax_error"
)

// ParseError reports a query that could not be compiled, with the byte
// offset of the offending token.
type ParseError struct {
	Kind ParseErrorKind
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse query: %s at offset %d: %s", e.Kind, e.Pos, e.Msg)
}

func parseErrorf(kind ParseErrorKind, pos int, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
