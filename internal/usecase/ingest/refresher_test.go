package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
)

// flakySource fails with ErrUnreachable until failures runs out.
type flakySource struct {
	failures int
	fetches  int
	raw      RawSet
}

func (f *flakySource) Fetch(_ context.Context, _ string) (RawSet, error) {
	f.fetches++
	if f.fetches <= f.failures {
		return RawSet{}, fmt.Errorf("%w: connection refused", domain.ErrUnreachable)
	}
	return f.raw, nil
}

func testRefresherConfig() RefresherConfig {
	return RefresherConfig{
		Interval:   time.Hour,
		BaseDelay:  time.Millisecond,
		MaxRetries: 3,
	}
}

func TestRefreshAll_RetriesTransientFailures(t *testing.T) {
	src := &flakySource{failures: 2, raw: goodRawSet()}
	store := &mockStore{}
	svc := New(src, store, zap.NewNop())
	r := NewRefresher(svc, []SourceRef{testRef}, testRefresherConfig(), zap.NewNop())

	if err := r.RefreshAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.fetches != 3 {
		t.Errorf("fetches = %d, want 3", src.fetches)
	}
	if len(store.upserts) != 1 {
		t.Errorf("upserts = %d, want 1", len(store.upserts))
	}
}

func TestRefreshAll_GivesUpAfterMaxRetries(t *testing.T) {
	src := &flakySource{failures: 100}
	svc := New(src, &mockStore{}, zap.NewNop())
	r := NewRefresher(svc, []SourceRef{testRef}, testRefresherConfig(), zap.NewNop())

	err := r.RefreshAll(context.Background())
	if !errors.Is(err, domain.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	// Initial attempt plus MaxRetries.
	if src.fetches != 4 {
		t.Errorf("fetches = %d, want 4", src.fetches)
	}
}

// Failures that are not transport faults are not retried.
func TestRefreshAll_DoesNotRetryEmptySets(t *testing.T) {
	src := &mockSource{raw: RawSet{Name: "Standard"}}
	svc := New(src, &mockStore{}, zap.NewNop())
	r := NewRefresher(svc, []SourceRef{testRef}, testRefresherConfig(), zap.NewNop())

	err := r.RefreshAll(context.Background())
	if !errors.Is(err, domain.ErrEmptySet) {
		t.Fatalf("expected ErrEmptySet, got %v", err)
	}
	if src.fetches != 1 {
		t.Errorf("fetches = %d, want 1", src.fetches)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	src := &mockSource{raw: goodRawSet()}
	svc := New(src, &mockStore{}, zap.NewNop())
	r := NewRefresher(svc, []SourceRef{testRef}, testRefresherConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
