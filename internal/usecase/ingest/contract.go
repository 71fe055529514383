package ingest

import (
	"context"

	"github.com/kailas-cloud/cardex/internal/domain/set"
)

// SourceRef names a remote set source.
type SourceRef struct {
	SetID string
	Name  string
	URL   string
}

// RawRecord is one card record as delivered by a source, before
// normalization. Nil numeric fields mean the card has no such stat.
type RawRecord struct {
	Name   string
	Text   string
	Cost   *int
	Attack *int
	Health *int
	Tags   []string
	Rarity string
	Image  string
}

// RawSet is the raw payload of one source fetch.
type RawSet struct {
	Name    string
	Version string
	Records []RawRecord
}

// Source retrieves raw set data. Implementations perform a single attempt
// per call and wrap transport-level failures in domain.ErrUnreachable;
// retry policy lives one layer up, in the Refresher.
type Source interface {
	Fetch(ctx context.Context, url string) (RawSet, error)
}

// SetWriter is the store contract the pipeline feeds.
type SetWriter interface {
	UpsertSet(st set.Set)
	Version(setID string) (string, bool)
}
