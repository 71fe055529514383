// Package setstore holds fetched card sets in memory and serves them to
// concurrent query evaluations.
//
// The store keeps one immutable snapshot behind an atomic pointer. Upserts
// build a fresh snapshot (copying the set map and rebuilding the tag index)
// and swap it in one step, so a reader iterating an old snapshot keeps
// seeing it in its entirety and never observes a half-replaced set.
package setstore

import (
	"iter"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/set"
)

// Store is an in-memory set store. The zero value is not usable; call New.
type Store struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]
}

// Stats describes the store content for observability.
type Stats struct {
	SetCount  int
	CardCount int
}

// cardRef addresses a card inside a snapshot's set map.
type cardRef struct {
	setID string
	idx   int
}

type snapshot struct {
	sets  map[string]set.Set
	order []string             // set IDs ascending, fixes iteration order
	tags  map[string][]cardRef // folded tag -> cards carrying it
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.snap.Store(buildSnapshot(nil))
	return s
}

// UpsertSet replaces any stored set with the same ID in one atomic step and
// rebuilds the tag index. It never fails; malformed sets are rejected by the
// fetch pipeline before they get here.
func (s *Store) UpsertSet(st set.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	sets := maps.Clone(cur.sets)
	if sets == nil {
		sets = make(map[string]set.Set, 1)
	}
	sets[st.ID()] = st
	s.snap.Store(buildSnapshot(sets))
}

// Version returns the source version of a stored set, ok=false when the set
// is not present.
func (s *Store) Version(setID string) (string, bool) {
	st, ok := s.snap.Load().sets[setID]
	if !ok {
		return "", false
	}
	return st.Version(), true
}

// Get returns a stored set by ID.
func (s *Store) Get(setID string) (set.Set, bool) {
	st, ok := s.snap.Load().sets[setID]
	return st, ok
}

// SetIDs returns the stored set IDs in ascending order.
func (s *Store) SetIDs() []string {
	return slices.Clone(s.snap.Load().order)
}

// Cards returns a single-use sequence of the cards inside the scope, pinned
// to the snapshot current at the time of the call. Order is deterministic:
// sets by ID ascending, cards in fetch order within a set. Set IDs in the
// scope that are not stored are skipped.
func (s *Store) Cards(scope set.Scope) iter.Seq[card.Card] {
	snap := s.snap.Load()
	return func(yield func(card.Card) bool) {
		for _, id := range snap.order {
			if !scope.Contains(id) {
				continue
			}
			for _, c := range snap.sets[id].Cards() {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// CardsWithTag returns the cards inside the scope carrying the given tag,
// served from the snapshot's tag index. The tag is folded before lookup.
// Order follows the same rule as Cards.
func (s *Store) CardsWithTag(scope set.Scope, tag string) iter.Seq[card.Card] {
	snap := s.snap.Load()
	refs := snap.tags[card.Fold(tag)]
	return func(yield func(card.Card) bool) {
		for _, ref := range refs {
			if !scope.Contains(ref.setID) {
				continue
			}
			if !yield(snap.sets[ref.setID].Cards()[ref.idx]) {
				return
			}
		}
	}
}

// Stats counts stored sets and cards.
func (s *Store) Stats() Stats {
	snap := s.snap.Load()
	st := Stats{SetCount: len(snap.sets)}
	for _, id := range snap.order {
		st.CardCount += snap.sets[id].Len()
	}
	return st
}

func buildSnapshot(sets map[string]set.Set) *snapshot {
	snap := &snapshot{
		sets: sets,
		tags: make(map[string][]cardRef),
	}
	snap.order = slices.Sorted(maps.Keys(sets))
	for _, id := range snap.order {
		for i, c := range sets[id].Cards() {
			for _, t := range c.Tags() {
				folded := card.Fold(t)
				snap.tags[folded] = append(snap.tags[folded], cardRef{setID: id, idx: i})
			}
		}
	}
	return snap
}
