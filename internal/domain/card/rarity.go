package card

import "fmt"

// Rarity is the tier a card belongs to.
type Rarity string

// Rarity constants, ordered from least to most restricted.
const (
	RaritySide     Rarity = "side"
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityUnique   Rarity = "unique"
)

// IsValid reports whether r is a known rarity.
func (r Rarity) IsValid() bool {
	switch r {
	case RaritySide, RarityCommon, RarityUncommon, RarityRare, RarityUnique:
		return true
	}
	return false
}

// ParseRarity resolves a rarity token, accepting the one-letter aliases used
// in query values (s, c, u, r, n).
func ParseRarity(s string) (Rarity, error) {
	switch s {
	case "side", "s":
		return RaritySide, nil
	case "common", "c":
		return RarityCommon, nil
	case "uncommon", "u":
		return RarityUncommon, nil
	case "rare", "r":
		return RarityRare, nil
	case "unique", "n":
		return RarityUnique, nil
	}
	return "", fmt.Errorf("unknown rarity %q", s)
}
