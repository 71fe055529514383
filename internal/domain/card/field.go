package card

import (
	"fmt"

	"github.com/kailas-cloud/cardex/internal/domain"
)

// Kind is the value type of a queryable card attribute.
type Kind int

// Attribute kinds.
const (
	KindNumber Kind = iota
	KindText
	KindTags
	KindRarity
)

// String returns the kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTags:
		return "tags"
	case KindRarity:
		return "rarity"
	}
	return "unknown"
}

// Field describes a queryable card attribute.
type Field struct {
	name string
	kind Kind
}

// Name returns the canonical field name.
func (f Field) Name() string { return f.name }

// Kind returns the attribute value type.
func (f Field) Kind() Kind { return f.kind }

// Canonical field names.
const (
	FieldName   = "name"
	FieldText   = "text"
	FieldSet    = "set"
	FieldCost   = "cost"
	FieldAttack = "attack"
	FieldHealth = "health"
	FieldTags   = "tags"
	FieldRarity = "rarity"
)

// schema maps query field names, including short aliases, to attributes.
var schema = map[string]Field{
	FieldName:   {FieldName, KindText},
	"n":         {FieldName, KindText},
	FieldText:   {FieldText, KindText},
	"d":         {FieldText, KindText},
	FieldSet:    {FieldSet, KindText},
	"st":        {FieldSet, KindText},
	FieldCost:   {FieldCost, KindNumber},
	"c":         {FieldCost, KindNumber},
	FieldAttack: {FieldAttack, KindNumber},
	"a":         {FieldAttack, KindNumber},
	FieldHealth: {FieldHealth, KindNumber},
	"h":         {FieldHealth, KindNumber},
	FieldTags:   {FieldTags, KindTags},
	"tag":       {FieldTags, KindTags},
	"s":         {FieldTags, KindTags},
	FieldRarity: {FieldRarity, KindRarity},
	"r":         {FieldRarity, KindRarity},
}

// ResolveField resolves a query field name or alias against the card schema.
func ResolveField(name string) (Field, bool) {
	f, ok := schema[name]
	return f, ok
}

// FieldValue is a tagged union over the attribute value types. It lets the
// evaluator treat all card fields uniformly without per-field branching.
type FieldValue struct {
	kind   Kind
	num    float64
	text   string
	tags   []string
	rarity Rarity
}

// NumberValue creates a numeric field value.
func NumberValue(n float64) FieldValue { return FieldValue{kind: KindNumber, num: n} }

// TextValue creates a text field value.
func TextValue(s string) FieldValue { return FieldValue{kind: KindText, text: s} }

// TagsValue creates a tag-set field value.
func TagsValue(tags []string) FieldValue { return FieldValue{kind: KindTags, tags: tags} }

// RarityValue creates a rarity field value.
func RarityValue(r Rarity) FieldValue { return FieldValue{kind: KindRarity, rarity: r} }

// Kind returns the value type.
func (v FieldValue) Kind() Kind { return v.kind }

// Number returns the numeric value.
func (v FieldValue) Number() float64 { return v.num }

// Text returns the text value.
func (v FieldValue) Text() string { return v.text }

// Tags returns the tag-set value.
func (v FieldValue) Tags() []string { return v.tags }

// Rarity returns the rarity value.
func (v FieldValue) Rarity() Rarity { return v.rarity }

// Value resolves a card attribute by field name. ok=false means the card has
// no value for the attribute (e.g. a card with no cost). An unrecognized
// field name is the only failure and wraps domain.ErrUnknownField.
func (c Card) Value(fieldName string) (FieldValue, bool, error) {
	f, ok := ResolveField(fieldName)
	if !ok {
		return FieldValue{}, false, fmt.Errorf("%w: %q", domain.ErrUnknownField, fieldName)
	}
	switch f.Name() {
	case FieldName:
		return TextValue(c.name), true, nil
	case FieldText:
		return TextValue(c.text), true, nil
	case FieldSet:
		return TextValue(c.setID), true, nil
	case FieldCost:
		return numberValueOf(c.cost)
	case FieldAttack:
		return numberValueOf(c.attack)
	case FieldHealth:
		return numberValueOf(c.health)
	case FieldTags:
		return TagsValue(c.tags), true, nil
	case FieldRarity:
		return RarityValue(c.rarity), true, nil
	}
	return FieldValue{}, false, fmt.Errorf("%w: %q", domain.ErrUnknownField, fieldName)
}

func numberValueOf(v *int) (FieldValue, bool, error) {
	if v == nil {
		return FieldValue{}, false, nil
	}
	return NumberValue(float64(*v)), true, nil
}
