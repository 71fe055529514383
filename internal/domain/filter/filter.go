// Package filter defines the parsed query expression tree. Trees are built
// once by the query parser, are immutable afterwards, and are re-evaluated
// against changing store snapshots.
package filter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/cardex/internal/domain/card"
)

// Op is a comparison operator of the query language.
type Op string

// Comparison operators. OpHas (":") is exact match for numeric and rarity
// fields, substring match for text fields and membership for tag fields.
const (
	OpHas Op = ":"
	OpEq  Op = "="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLe  Op = "<="
	OpGt  Op = ">"
	OpGe  Op = ">="
)

// Ordered reports whether the operator requires a numeric field.
func (o Op) Ordered() bool {
	switch o {
	case OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Expr is a node of the filter expression tree.
type Expr interface {
	// String serializes the node to canonical query text; parsing the
	// result yields an equivalent tree.
	String() string

	isExpr()
}

// Comparison matches a single card attribute against a value.
type Comparison struct {
	Field card.Field
	Op    Op
	Value Value
}

// FuzzyText approximately matches a bare query term against the card name
// and rules text.
type FuzzyText struct {
	Pattern string
}

// Not inverts its child.
type Not struct {
	Child Expr
}

// And matches when every child matches.
type And struct {
	Children []Expr
}

// Or matches when at least one child matches.
type Or struct {
	Children []Expr
}

func (Comparison) isExpr() {}
func (FuzzyText) isExpr()  {}
func (Not) isExpr()        {}
func (And) isExpr()        {}
func (Or) isExpr()         {}

func (c Comparison) String() string {
	return c.Field.Name() + string(c.Op) + c.Value.token()
}

func (f FuzzyText) String() string {
	return quoteIfNeeded(f.Pattern)
}

func (n Not) String() string {
	return "-" + n.Child.String()
}

func (a And) String() string {
	return "(" + joinExprs(a.Children, " ") + ")"
}

func (o Or) String() string {
	return "(" + joinExprs(o.Children, " OR ") + ")"
}

func joinExprs(children []Expr, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}

// Value is the right-hand side of a comparison: a number, a rarity, or text.
type Value struct {
	kind   card.Kind
	num    float64
	text   string
	rarity card.Rarity
}

// NumberValue creates a numeric comparison value.
func NumberValue(n float64) Value { return Value{kind: card.KindNumber, num: n} }

// TextValue creates a text comparison value.
func TextValue(s string) Value { return Value{kind: card.KindText, text: s} }

// RarityValue creates a rarity comparison value.
func RarityValue(r card.Rarity) Value { return Value{kind: card.KindRarity, rarity: r} }

// Kind returns the value type.
func (v Value) Kind() card.Kind { return v.kind }

// Number returns the numeric value.
func (v Value) Number() float64 { return v.num }

// Text returns the text value.
func (v Value) Text() string { return v.text }

// Rarity returns the rarity value.
func (v Value) Rarity() card.Rarity { return v.rarity }

func (v Value) token() string {
	switch v.kind {
	case card.KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case card.KindRarity:
		return string(v.rarity)
	default:
		return quoteIfNeeded(v.text)
	}
}

// quoteIfNeeded wraps a token in quotes when it would not survive lexing as
// a single bare word.
func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	// A leading '-' would lex as negation, and a bare OR as the keyword.
	if s[0] == '-' || strings.EqualFold(s, "OR") {
		return `"` + s + `"`
	}
	for _, r := range s {
		if !isWordRune(r) {
			return `"` + s + `"`
		}
	}
	return s
}

// isWordRune mirrors what the query lexer accepts inside a bare word.
func isWordRune(r rune) bool {
	return r == '-' || r == '_' || r == '.' || r == '\'' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}
