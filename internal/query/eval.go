package query

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/filter"
)

// outcome is the result of evaluating one card against one subtree.
// exact distinguishes matches backed by exact field comparisons from matches
// that only exist because a fuzzy term was close enough; it drives the
// primary ordering of results.
type outcome struct {
	matched bool
	exact   bool
}

// Evaluate runs a filter expression over a card sequence and returns the
// matches ordered by relevance category (exact before fuzzy-only), then by
// name ascending, deduplicated by (set ID, name).
//
// The only possible error is a consistency fault: a field that passed parse
// validation but is unknown to the card accessor. That indicates schema
// drift between parse and evaluate and is surfaced, never swallowed.
func Evaluate(expr filter.Expr, cards iter.Seq[card.Card]) ([]card.Card, error) {
	type hit struct {
		c     card.Card
		exact bool
	}
	var hits []hit
	seen := make(map[string]struct{})

	for c := range cards {
		out, err := eval(expr, c)
		if err != nil {
			return nil, err
		}
		if !out.matched {
			continue
		}
		if _, dup := seen[c.Key()]; dup {
			continue
		}
		seen[c.Key()] = struct{}{}
		hits = append(hits, hit{c: c, exact: out.exact})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].exact != hits[j].exact {
			return hits[i].exact
		}
		return strings.ToLower(hits[i].c.Name()) < strings.ToLower(hits[j].c.Name())
	})

	results := make([]card.Card, len(hits))
	for i, h := range hits {
		results[i] = h.c
	}
	return results, nil
}

func eval(expr filter.Expr, c card.Card) (outcome, error) {
	switch e := expr.(type) {
	case filter.Comparison:
		return evalComparison(e, c)
	case filter.FuzzyText:
		return evalFuzzy(e, c), nil
	case filter.Not:
		out, err := eval(e.Child, c)
		if err != nil {
			return outcome{}, err
		}
		m := !out.matched
		return outcome{matched: m, exact: m}, nil
	case filter.And:
		return evalAnd(e, c)
	case filter.Or:
		return evalOr(e, c)
	}
	return outcome{}, fmt.Errorf("%w: unexpected expression node %T", domain.ErrConsistency, expr)
}

func evalAnd(e filter.And, c card.Card) (outcome, error) {
	exact := true
	for _, child := range e.Children {
		out, err := eval(child, c)
		if err != nil {
			return outcome{}, err
		}
		if !out.matched {
			return outcome{}, nil
		}
		exact = exact && out.exact
	}
	return outcome{matched: true, exact: exact}, nil
}

func evalOr(e filter.Or, c card.Card) (outcome, error) {
	var res outcome
	for _, child := range e.Children {
		out, err := eval(child, c)
		if err != nil {
			return outcome{}, err
		}
		if out.matched {
			res.matched = true
			if out.exact {
				// The strongest possible outcome; later children
				// cannot improve it.
				return outcome{matched: true, exact: true}, nil
			}
		}
	}
	return res, nil
}

func evalComparison(e filter.Comparison, c card.Card) (outcome, error) {
	v, ok, err := c.Value(e.Field.Name())
	if err != nil {
		// Parse accepted the field but the accessor does not know it.
		return outcome{}, fmt.Errorf("%w: %v", domain.ErrConsistency, err)
	}
	if !ok {
		// The card has no value for this stat; no comparison matches,
		// including "!=".
		return outcome{}, nil
	}

	var matched bool
	switch e.Field.Kind() {
	case card.KindNumber:
		matched = compareNumbers(v.Number(), e.Op, e.Value.Number())
	case card.KindText:
		matched = compareText(card.Fold(v.Text()), e.Op, card.Fold(e.Value.Text()))
	case card.KindTags:
		matched = compareTags(v.Tags(), e.Op, card.Fold(e.Value.Text()))
	case card.KindRarity:
		eq := v.Rarity() == e.Value.Rarity()
		matched = eq != (e.Op == filter.OpNe)
	}
	return outcome{matched: matched, exact: matched}, nil
}

func compareNumbers(have float64, op filter.Op, want float64) bool {
	switch op {
	case filter.OpHas, filter.OpEq:
		return have == want
	case filter.OpNe:
		return have != want
	case filter.OpLt:
		return have < want
	case filter.OpLe:
		return have <= want
	case filter.OpGt:
		return have > want
	case filter.OpGe:
		return have >= want
	}
	return false
}

// compareText: ":" is case-insensitive substring, "=" exact equality,
// "!=" negated equality. Inputs are folded by the caller.
func compareText(have string, op filter.Op, want string) bool {
	switch op {
	case filter.OpHas:
		return strings.Contains(have, want)
	case filter.OpEq:
		return have == want
	case filter.OpNe:
		return have != want
	}
	return false
}

// compareTags: ":" and "=" are set membership, "!=" its negation.
func compareTags(tags []string, op filter.Op, want string) bool {
	member := false
	for _, t := range tags {
		if card.Fold(t) == want {
			member = true
			break
		}
	}
	if op == filter.OpNe {
		return !member
	}
	return member
}

// evalFuzzy matches a bare term against name and rules text. The match is
// exact when the folded pattern equals the folded card name.
func evalFuzzy(e filter.FuzzyText, c card.Card) outcome {
	pattern := card.Fold(e.Pattern)
	name := card.Fold(c.Name())
	if name == pattern {
		return outcome{matched: true, exact: true}
	}
	if fuzzyMatch(name, pattern) || fuzzyMatch(card.Fold(c.Text()), pattern) {
		return outcome{matched: true}
	}
	return outcome{}
}
