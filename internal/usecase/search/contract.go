package search

import (
	"iter"

	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/set"
)

// CardSource is the store contract queries are evaluated against. Both
// sequences are pinned to one store snapshot per call and are single-use.
type CardSource interface {
	Cards(scope set.Scope) iter.Seq[card.Card]
	CardsWithTag(scope set.Scope, tag string) iter.Seq[card.Card]
}
