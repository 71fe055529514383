package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/cardex/internal/domain"
)

// Refresher keeps the store in sync with its sources: one refresh loop per
// source, transient failures retried with bounded exponential backoff.
type Refresher struct {
	svc        *Service
	sources    []SourceRef
	interval   time.Duration
	baseDelay  time.Duration
	maxRetries uint64
	logger     *zap.Logger
}

// RefresherConfig tunes the refresh schedule. Zero values fall back to
// defaults: 30m interval, 2s base backoff delay, 4 retries.
type RefresherConfig struct {
	Interval   time.Duration
	BaseDelay  time.Duration
	MaxRetries uint64
}

// NewRefresher creates a background refresher over the given sources.
func NewRefresher(svc *Service, sources []SourceRef, cfg RefresherConfig, logger *zap.Logger) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 2 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 4
	}
	return &Refresher{
		svc:        svc,
		sources:    sources,
		interval:   cfg.Interval,
		baseDelay:  cfg.BaseDelay,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Run refreshes every source once, then keeps each one on its schedule
// until the context is cancelled. It always returns ctx.Err().
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.RefreshAll(ctx); err != nil {
		r.logger.Warn("initial refresh incomplete", zap.Error(err))
	}

	var g errgroup.Group
	for _, ref := range r.sources {
		g.Go(func() error {
			ticker := time.NewTicker(r.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := r.refreshWithRetry(ctx, ref); err != nil {
						r.logger.Error("refresh failed",
							zap.String("set_id", ref.SetID), zap.Error(err))
					}
				}
			}
		})
	}
	return g.Wait()
}

// RefreshAll refreshes every source concurrently, retrying transient
// failures. The first error is returned, after all sources finished.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	for _, ref := range r.sources {
		g.Go(func() error {
			return r.refreshWithRetry(ctx, ref)
		})
	}
	return g.Wait()
}

// refreshWithRetry retries domain.ErrUnreachable with exponential backoff;
// every other failure (malformed payloads, empty sets) fails immediately.
func (r *Refresher) refreshWithRetry(ctx context.Context, ref SourceRef) error {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.baseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := r.svc.Refresh(ctx, ref)
		if errors.Is(err, domain.ErrUnreachable) {
			r.logger.Warn("source unreachable, will retry",
				zap.String("set_id", ref.SetID), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}
