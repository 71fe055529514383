// Package query compiles the card search language into filter expressions
// and evaluates them against card sequences.
//
// The grammar, in rough EBNF:
//
//	query  = or
//	or     = and { "OR" and }
//	and    = not { not }
//	not    = [ "-" ] primary
//	primary = "(" or ")" | FIELD OP value | WORD | QUOTED | NUMBER
//
// Space-separated terms combine with implicit AND; precedence is
// NOT > AND > OR. Field names and operator/value typing are validated here,
// against the card schema, so the evaluator never sees an unknown field that
// the schema also knows.
package query

import (
	"strings"

	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/filter"
)

// Parse compiles query text into a filter expression tree.
// Failures are *ParseError values: empty input, syntax errors, unknown
// fields, and operator/value type mismatches are all rejected here rather
// than silently matching nothing at evaluation time.
func Parse(input string) (filter.Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, parseErrorf(ParseEmptyQuery, 0, "query is empty")
	}
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tk := p.peek(); tk.typ != tokenEOF {
		return nil, parseErrorf(ParseSyntax, tk.pos, "unexpected %s", tk.typ)
	}
	return expr, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tk := p.tokens[p.pos]
	if tk.typ != tokenEOF {
		p.pos++
	}
	return tk
}

func (p *parser) parseOr() (filter.Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []filter.Expr{first}
	for p.peek().typ == tokenOr {
		p.next()
		child, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return first, nil
	}
	return filter.Or{Children: children}, nil
}

func (p *parser) parseAnd() (filter.Expr, error) {
	var children []filter.Expr
	for {
		tk := p.peek()
		if tk.typ == tokenEOF || tk.typ == tokenRParen || tk.typ == tokenOr {
			break
		}
		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	switch len(children) {
	case 0:
		tk := p.peek()
		return nil, parseErrorf(ParseSyntax, tk.pos, "expected a term, got %s", tk.typ)
	case 1:
		return children[0], nil
	}
	return filter.And{Children: children}, nil
}

func (p *parser) parseNot() (filter.Expr, error) {
	if p.peek().typ != tokenMinus {
		return p.parsePrimary()
	}
	p.next()
	child, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return filter.Not{Child: child}, nil
}

func (p *parser) parsePrimary() (filter.Expr, error) {
	switch tk := p.next(); tk.typ {
	case tokenLParen:
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.typ != tokenRParen {
			return nil, parseErrorf(ParseSyntax, closing.pos, "expected ')', got %s", closing.typ)
		}
		return expr, nil

	case tokenWord:
		if p.peek().typ == tokenOp {
			return p.parseComparison(tk)
		}
		return filter.FuzzyText{Pattern: tk.text}, nil

	case tokenNumber, tokenQuoted:
		if p.peek().typ == tokenOp {
			return nil, parseErrorf(ParseSyntax, tk.pos, "field name expected before operator, got %q", tk.text)
		}
		return filter.FuzzyText{Pattern: tk.text}, nil

	default:
		return nil, parseErrorf(ParseSyntax, tk.pos, "expected a term, got %s", tk.typ)
	}
}

// parseComparison consumes "OP value" after a field word and type-checks the
// combination against the schema.
func (p *parser) parseComparison(fieldTk token) (filter.Expr, error) {
	f, ok := card.ResolveField(fieldTk.text)
	if !ok {
		return nil, parseErrorf(ParseUnknownField, fieldTk.pos, "unknown field %q", fieldTk.text)
	}

	opTk := p.next()
	valueTk := p.next()
	switch valueTk.typ {
	case tokenWord, tokenNumber, tokenQuoted:
	default:
		return nil, parseErrorf(ParseSyntax, valueTk.pos, "expected a value for field %q, got %s", f.Name(), valueTk.typ)
	}

	if opTk.op.Ordered() && f.Kind() != card.KindNumber {
		return nil, parseErrorf(ParseTypeMismatch, opTk.pos,
			"operator %q requires a numeric field, %q is %s", opTk.op, f.Name(), f.Kind())
	}

	value, err := comparisonValue(f, valueTk)
	if err != nil {
		return nil, err
	}
	return filter.Comparison{Field: f, Op: opTk.op, Value: value}, nil
}

func comparisonValue(f card.Field, valueTk token) (filter.Value, error) {
	switch f.Kind() {
	case card.KindNumber:
		if valueTk.typ != tokenNumber {
			return filter.Value{}, parseErrorf(ParseTypeMismatch, valueTk.pos,
				"field %q is numeric, %q is not a number", f.Name(), valueTk.text)
		}
		return filter.NumberValue(valueTk.num), nil

	case card.KindRarity:
		r, err := card.ParseRarity(strings.ToLower(valueTk.text))
		if err != nil {
			return filter.Value{}, parseErrorf(ParseTypeMismatch, valueTk.pos,
				"field %q: %v", f.Name(), err)
		}
		return filter.RarityValue(r), nil

	default:
		return filter.TextValue(valueTk.text), nil
	}
}
