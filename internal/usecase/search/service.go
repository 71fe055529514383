// Package search is the query engine facade: parse, evaluate, order.
package search

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/filter"
	"github.com/kailas-cloud/cardex/internal/domain/set"
	"github.com/kailas-cloud/cardex/internal/metrics"
	"github.com/kailas-cloud/cardex/internal/query"
)

// Service executes card searches against the current store snapshot. Each
// call is stateless; nothing is carried between queries.
type Service struct {
	store  CardSource
	logger *zap.Logger
}

// New creates a search service.
func New(store CardSource, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Search compiles query text and evaluates it inside the scope. Parse
// failures come back as *query.ParseError; a consistency fault between
// parse and evaluate wraps domain.ErrConsistency and is logged, since it
// indicates a bug rather than a bad query. No results is a success with an
// empty slice.
func (s *Service) Search(_ context.Context, queryText string, scope set.Scope) ([]card.Card, error) {
	start := time.Now()

	expr, err := query.Parse(queryText)
	if err != nil {
		metrics.RecordSearch("parse_error", time.Since(start).Seconds(), 0)
		return nil, err
	}

	results, err := query.Evaluate(expr, s.candidates(expr, scope))
	if err != nil {
		if errors.Is(err, domain.ErrConsistency) {
			metrics.RecordSearch("consistency_fault", time.Since(start).Seconds(), 0)
			s.logger.Error("consistency fault during evaluation",
				zap.String("query", queryText), zap.Error(err))
		}
		return nil, err
	}

	metrics.RecordSearch("ok", time.Since(start).Seconds(), len(results))
	return results, nil
}

// candidates picks the card sequence to evaluate. A query that is a single
// tag comparison is served from the store's tag index instead of a full
// scope scan; every candidate still goes through the evaluator, so the
// result is identical either way.
func (s *Service) candidates(expr filter.Expr, scope set.Scope) iter.Seq[card.Card] {
	if cmp, ok := expr.(filter.Comparison); ok &&
		cmp.Field.Name() == card.FieldTags &&
		(cmp.Op == filter.OpHas || cmp.Op == filter.OpEq) {
		return s.store.CardsWithTag(scope, cmp.Value.Text())
	}
	return s.store.Cards(scope)
}
