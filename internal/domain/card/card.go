package card

import (
	"fmt"
	"slices"
)

// Card is an immutable card value. Cards are created once during set
// normalization and never mutated afterwards; the store and the evaluator
// share them freely across goroutines.
type Card struct {
	name   string
	setID  string
	cost   *int
	attack *int
	health *int
	tags   []string
	text   string
	rarity Rarity
	image  string
}

// New validates and creates a Card.
// Name and set ID must be non-empty; numeric stats are either nil (the card
// has no such stat) or non-negative.
func New(
	name, setID string,
	cost, attack, health *int,
	tags []string, text string, rarity Rarity, image string,
) (Card, error) {
	if name == "" {
		return Card{}, fmt.Errorf("card name is required")
	}
	if setID == "" {
		return Card{}, fmt.Errorf("set ID is required for card %q", name)
	}
	for stat, v := range map[string]*int{"cost": cost, "attack": attack, "health": health} {
		if v != nil && *v < 0 {
			return Card{}, fmt.Errorf("%s of card %q must be non-negative, got %d", stat, name, *v)
		}
	}
	if !rarity.IsValid() {
		return Card{}, fmt.Errorf("invalid rarity %q for card %q", rarity, name)
	}
	return Card{
		name:   name,
		setID:  setID,
		cost:   cloneInt(cost),
		attack: cloneInt(attack),
		health: cloneInt(health),
		tags:   slices.Clone(tags),
		text:   text,
		rarity: rarity,
		image:  image,
	}, nil
}

// Reconstruct creates a Card without validation (test fixtures, hydration).
func Reconstruct(
	name, setID string,
	cost, attack, health *int,
	tags []string, text string, rarity Rarity, image string,
) Card {
	return Card{
		name: name, setID: setID,
		cost: cost, attack: attack, health: health,
		tags: tags, text: text, rarity: rarity, image: image,
	}
}

// Name returns the card name.
func (c Card) Name() string { return c.name }

// SetID returns the ID of the set the card belongs to.
func (c Card) SetID() string { return c.setID }

// Cost returns the card cost, ok=false if the card has none.
func (c Card) Cost() (int, bool) { return deref(c.cost) }

// Attack returns the card attack, ok=false if the card has none.
func (c Card) Attack() (int, bool) { return deref(c.attack) }

// Health returns the card health, ok=false if the card has none.
func (c Card) Health() (int, bool) { return deref(c.health) }

// Tags returns the card keywords/traits.
func (c Card) Tags() []string { return c.tags }

// HasTag reports whether the card carries the given tag, compared folded.
func (c Card) HasTag(tag string) bool {
	want := Fold(tag)
	for _, t := range c.tags {
		if Fold(t) == want {
			return true
		}
	}
	return false
}

// Text returns the free-form rules text.
func (c Card) Text() string { return c.text }

// CardRarity returns the card rarity.
func (c Card) CardRarity() Rarity { return c.rarity }

// Image returns an opaque reference to the card portrait.
func (c Card) Image() string { return c.image }

// Key identifies a card within the store: cards are deduplicated by
// (set ID, name).
func (c Card) Key() string { return c.setID + "/" + c.name }

func deref(v *int) (int, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
