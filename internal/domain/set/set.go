package set

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/cardex/internal/domain/card"
)

// Set is an immutable named collection of cards sharing a set ID, stamped
// with the source version token the fetch produced it from.
type Set struct {
	id      string
	name    string
	version string
	cards   []card.Card
}

// New validates and creates a Set. All cards must carry the set's ID.
func New(id, name, version string, cards []card.Card) (Set, error) {
	if id == "" {
		return Set{}, fmt.Errorf("set ID is required")
	}
	if name == "" {
		return Set{}, fmt.Errorf("name is required for set %q", id)
	}
	for _, c := range cards {
		if c.SetID() != id {
			return Set{}, fmt.Errorf("card %q belongs to set %q, not %q", c.Name(), c.SetID(), id)
		}
	}
	return Set{id: id, name: name, version: version, cards: slices.Clone(cards)}, nil
}

// Reconstruct creates a Set without validation (test fixtures).
func Reconstruct(id, name, version string, cards []card.Card) Set {
	return Set{id: id, name: name, version: version, cards: cards}
}

// ID returns the set identifier.
func (s Set) ID() string { return s.id }

// Name returns the human-readable set name.
func (s Set) Name() string { return s.name }

// Version returns the opaque source version token.
func (s Set) Version() string { return s.version }

// Cards returns the cards in fetch order. Callers must not mutate the slice.
func (s Set) Cards() []card.Card { return s.cards }

// Len returns the number of cards in the set.
func (s Set) Len() int { return len(s.cards) }
