package query

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/cardex/internal/domain/filter"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenWord
	tokenNumber
	tokenQuoted
	tokenLParen
	tokenRParen
	tokenMinus
	tokenOr
	tokenOp
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of query"
	case tokenWord:
		return "word"
	case tokenNumber:
		return "number"
	case tokenQuoted:
		return "quoted string"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenMinus:
		return "'-'"
	case tokenOr:
		return "'OR'"
	case tokenOp:
		return "operator"
	}
	return "unknown token"
}

type token struct {
	typ  tokenType
	text string
	op   filter.Op
	num  float64
	pos  int
}

// tokenize splits a query into tokens in a single left-to-right pass.
// A '-' only negates at the start of a token; inside a word it is literal,
// so hyphenated card names lex as one word.
func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case unicode.IsSpace(r):
			i += size

		case r == '(':
			tokens = append(tokens, token{typ: tokenLParen, pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{typ: tokenRParen, pos: i})
			i++
		case r == '-':
			tokens = append(tokens, token{typ: tokenMinus, pos: i})
			i++

		case r == '"':
			end := strings.IndexByte(input[i+1:], '"')
			if end < 0 {
				return nil, parseErrorf(ParseSyntax, i, "unterminated quoted string")
			}
			tokens = append(tokens, token{typ: tokenQuoted, text: input[i+1 : i+1+end], pos: i})
			i += end + 2

		case r == '!':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, parseErrorf(ParseSyntax, i, "unexpected %q, expected \"!=\"", input[i:i+1])
			}
			tokens = append(tokens, token{typ: tokenOp, op: filter.OpNe, pos: i})
			i += 2
		case r == '<' || r == '>':
			op := filter.OpLt
			if r == '>' {
				op = filter.OpGt
			}
			if i+1 < len(input) && input[i+1] == '=' {
				if op == filter.OpLt {
					op = filter.OpLe
				} else {
					op = filter.OpGe
				}
				i++
			}
			tokens = append(tokens, token{typ: tokenOp, op: op, pos: i})
			i++
		case r == '=':
			tokens = append(tokens, token{typ: tokenOp, op: filter.OpEq, pos: i})
			i++
		case r == ':':
			tokens = append(tokens, token{typ: tokenOp, op: filter.OpHas, pos: i})
			i++

		case isWordRune(r):
			start := i
			for i < len(input) {
				r, size := utf8.DecodeRuneInString(input[i:])
				if !isWordRune(r) && r != '-' {
					break
				}
				i += size
			}
			word := input[start:i]
			tokens = append(tokens, wordToken(word, start))

		default:
			return nil, parseErrorf(ParseSyntax, i, "unrecognized character %q", r)
		}
	}
	tokens = append(tokens, token{typ: tokenEOF, pos: len(input)})
	return tokens, nil
}

func wordToken(word string, pos int) token {
	if strings.EqualFold(word, "or") {
		return token{typ: tokenOr, text: word, pos: pos}
	}
	if n, err := strconv.ParseFloat(word, 64); err == nil {
		return token{typ: tokenNumber, text: word, num: n, pos: pos}
	}
	return token{typ: tokenWord, text: word, pos: pos}
}

func isWordRune(r rune) bool {
	return r == '_' || r == '.' || r == '\'' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}
