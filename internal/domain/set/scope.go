package set

import "slices"

// Scope restricts a query to a subset of the store: one set, several, or all.
// The zero value is the all-sets scope.
type Scope struct {
	setIDs []string
}

// All creates a scope spanning every set in the store.
func All() Scope { return Scope{} }

// Of creates a scope restricted to the given set IDs. IDs that are not
// present in the store are ignored at evaluation time; an empty list is the
// empty scope, which yields no cards.
func Of(setIDs ...string) Scope {
	if len(setIDs) == 0 {
		return Scope{setIDs: []string{}}
	}
	return Scope{setIDs: slices.Clone(setIDs)}
}

// IsAll reports whether the scope spans every set.
func (s Scope) IsAll() bool { return s.setIDs == nil }

// SetIDs returns the restricted set IDs, nil for the all-sets scope.
func (s Scope) SetIDs() []string { return s.setIDs }

// Contains reports whether a set ID falls inside the scope.
func (s Scope) Contains(setID string) bool {
	if s.IsAll() {
		return true
	}
	return slices.Contains(s.setIDs, setID)
}
