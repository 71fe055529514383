// Package ingest is the fetch pipeline: it pulls raw records from remote
// sources, normalizes them into cards and hands complete sets to the store.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/set"
	"github.com/kailas-cloud/cardex/internal/metrics"
)

// Service fetches and normalizes sets.
type Service struct {
	source Source
	store  SetWriter
	logger *zap.Logger
}

// New creates an ingest service.
func New(source Source, store SetWriter, logger *zap.Logger) *Service {
	return &Service{source: source, store: store, logger: logger}
}

// FetchSet performs one fetch attempt for the referenced source and returns
// the normalized set. Records that fail normalization are logged and
// skipped; the whole fetch fails with domain.ErrEmptySet only when zero
// records survive. domain.ErrVersionUnchanged is returned without
// normalizing when the source still serves the stored version.
func (s *Service) FetchSet(ctx context.Context, ref SourceRef) (set.Set, error) {
	raw, err := s.source.Fetch(ctx, ref.URL)
	if err != nil {
		return set.Set{}, fmt.Errorf("fetch set %q: %w", ref.SetID, err)
	}

	if raw.Version != "" {
		if stored, ok := s.store.Version(ref.SetID); ok && stored == raw.Version {
			return set.Set{}, fmt.Errorf("set %q at version %q: %w",
				ref.SetID, raw.Version, domain.ErrVersionUnchanged)
		}
	}

	cards := make([]card.Card, 0, len(raw.Records))
	for i, rec := range raw.Records {
		c, err := normalizeRecord(ref.SetID, rec)
		if err != nil {
			metrics.RecordSkipped(ref.SetID)
			s.logger.Warn("skipping malformed record",
				zap.String("set_id", ref.SetID),
				zap.Int("record", i),
				zap.String("name", rec.Name),
				zap.Error(err),
			)
			continue
		}
		cards = append(cards, c)
	}
	if len(cards) == 0 {
		return set.Set{}, fmt.Errorf("source %q: %w", ref.URL, domain.ErrEmptySet)
	}

	name := raw.Name
	if name == "" {
		name = ref.Name
	}
	st, err := set.New(ref.SetID, name, raw.Version, cards)
	if err != nil {
		return set.Set{}, fmt.Errorf("assemble set %q: %w", ref.SetID, err)
	}
	return st, nil
}

// Refresh fetches the referenced source and upserts the result into the
// store. It reports whether the store changed; an unchanged source version
// is not an error.
func (s *Service) Refresh(ctx context.Context, ref SourceRef) (bool, error) {
	st, err := s.FetchSet(ctx, ref)
	if errors.Is(err, domain.ErrVersionUnchanged) {
		s.logger.Debug("set is up to date", zap.String("set_id", ref.SetID))
		metrics.RecordFetch(ref.SetID, "unchanged")
		return false, nil
	}
	if err != nil {
		metrics.RecordFetch(ref.SetID, "error")
		return false, err
	}

	s.store.UpsertSet(st)
	metrics.RecordFetch(ref.SetID, "ok")
	s.logger.Info("set refreshed",
		zap.String("set_id", st.ID()),
		zap.String("version", st.Version()),
		zap.Int("cards", st.Len()),
	)
	return true, nil
}

func normalizeRecord(setID string, rec RawRecord) (card.Card, error) {
	rarity := card.RarityCommon
	if rec.Rarity != "" {
		var err error
		rarity, err = card.ParseRarity(card.Fold(rec.Rarity))
		if err != nil {
			return card.Card{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
		}
	}
	c, err := card.New(rec.Name, setID, rec.Cost, rec.Attack, rec.Health,
		rec.Tags, rec.Text, rarity, rec.Image)
	if err != nil {
		return card.Card{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	return c, nil
}
