package setstore

import (
	"fmt"
	"iter"
	"sync"
	"testing"

	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/set"
)

func makeSet(id, version string, names ...string) set.Set {
	cards := make([]card.Card, len(names))
	for i, n := range names {
		cards[i] = card.Reconstruct(n, id, nil, nil, nil, nil, "", card.RarityCommon, "")
	}
	return set.Reconstruct(id, "Set "+id, version, cards)
}

func collect(s *Store, scope set.Scope) []card.Card {
	var out []card.Card
	for c := range s.Cards(scope) {
		out = append(out, c)
	}
	return out
}

func TestStore_Empty(t *testing.T) {
	s := New()
	if got := collect(s, set.All()); len(got) != 0 {
		t.Fatalf("empty store yielded %d cards", len(got))
	}
	if ids := s.SetIDs(); len(ids) != 0 {
		t.Fatalf("empty store has set IDs %v", ids)
	}
	if _, ok := s.Version("std"); ok {
		t.Fatal("version reported for missing set")
	}
	if st := s.Stats(); st.SetCount != 0 || st.CardCount != 0 {
		t.Fatalf("stats of empty store: %+v", st)
	}
}

func TestStore_UpsertReplacesWholeSet(t *testing.T) {
	s := New()
	s.UpsertSet(makeSet("std", "v1", "Stoat", "Wyrm"))
	s.UpsertSet(makeSet("std", "v2", "Mantis"))

	got := collect(s, set.All())
	if len(got) != 1 || got[0].Name() != "Mantis" {
		t.Fatalf("replacement not atomic: %v", got)
	}
	if v, ok := s.Version("std"); !ok || v != "v2" {
		t.Fatalf("version = %q, %v", v, ok)
	}
}

func TestStore_IterationOrder(t *testing.T) {
	s := New()
	s.UpsertSet(makeSet("zz", "v1", "Zebra"))
	s.UpsertSet(makeSet("aa", "v1", "Wyrm", "Stoat"))

	got := collect(s, set.All())
	want := []string{"Wyrm", "Stoat", "Zebra"} // sets by ID asc, fetch order within
	if len(got) != len(want) {
		t.Fatalf("got %d cards, want %d", len(got), len(want))
	}
	for i, n := range want {
		if got[i].Name() != n {
			t.Errorf("position %d: got %q, want %q", i, got[i].Name(), n)
		}
	}
}

func TestStore_Scope(t *testing.T) {
	s := New()
	s.UpsertSet(makeSet("std", "v1", "Stoat"))
	s.UpsertSet(makeSet("ext", "v1", "Wyrm"))

	if got := collect(s, set.Of("std")); len(got) != 1 || got[0].Name() != "Stoat" {
		t.Fatalf("scoped iteration: %v", got)
	}
	// Unknown IDs in the scope are skipped, not an error.
	if got := collect(s, set.Of("std", "missing")); len(got) != 1 {
		t.Fatalf("scope with missing ID: %d cards", len(got))
	}
	if got := collect(s, set.Of()); len(got) != 0 {
		t.Fatalf("empty scope yielded %d cards", len(got))
	}
}

func TestStore_TagIndex(t *testing.T) {
	s := New()
	tagged := card.Reconstruct("Wyrm", "std", nil, nil, nil, []string{"Rare", "Beast"}, "", card.RarityCommon, "")
	plain := card.Reconstruct("Stoat", "std", nil, nil, nil, nil, "", card.RarityCommon, "")
	s.UpsertSet(set.Reconstruct("std", "Standard", "v1", []card.Card{plain, tagged}))

	var got []card.Card
	for c := range s.CardsWithTag(set.All(), "rare") {
		got = append(got, c)
	}
	if len(got) != 1 || got[0].Name() != "Wyrm" {
		t.Fatalf("tag lookup: %v", got)
	}

	for range s.CardsWithTag(set.Of("other"), "rare") {
		t.Fatal("tag lookup ignored the scope")
	}
	for range s.CardsWithTag(set.All(), "bird") {
		t.Fatal("unexpected card for unknown tag")
	}
}

func TestStore_Stats(t *testing.T) {
	s := New()
	s.UpsertSet(makeSet("std", "v1", "Stoat", "Wyrm"))
	s.UpsertSet(makeSet("ext", "v1", "Mantis"))

	st := s.Stats()
	if st.SetCount != 2 || st.CardCount != 3 {
		t.Fatalf("stats = %+v", st)
	}
}

// An iterator started before an upsert keeps seeing its snapshot.
func TestStore_IteratorPinsSnapshot(t *testing.T) {
	s := New()
	s.UpsertSet(makeSet("std", "v1", "Stoat", "Wyrm"))

	next, stop := iter.Pull(s.Cards(set.All()))
	defer stop()

	first, ok := next()
	if !ok || first.Name() != "Stoat" {
		t.Fatalf("first card: %v, %v", first.Name(), ok)
	}

	s.UpsertSet(makeSet("std", "v2", "Mantis"))

	second, ok := next()
	if !ok || second.Name() != "Wyrm" {
		t.Fatalf("iterator escaped its snapshot: %v, %v", second.Name(), ok)
	}
	if _, ok := next(); ok {
		t.Fatal("iterator yielded beyond its snapshot")
	}
}

// Readers racing a writer always see complete sets.
func TestStore_ConcurrentReadersSeeWholeSets(t *testing.T) {
	s := New()
	s.UpsertSet(makeSet("std", "v0", "Stoat", "Stoat", "Stoat"))

	const writes = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= writes; i++ {
			version := fmt.Sprintf("v%d", i)
			name := fmt.Sprintf("Card-%d", i)
			s.UpsertSet(makeSet("std", version, name, name, name))
		}
	}()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				var names []string
				for c := range s.Cards(set.All()) {
					names = append(names, c.Name())
				}
				if len(names) != 3 {
					t.Errorf("observed %d cards, want 3", len(names))
					return
				}
				for _, n := range names[1:] {
					if n != names[0] {
						t.Errorf("torn snapshot: %v", names)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
