package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/sheetsync/internal/adapter/tiendanube"
	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
)

// CatalogSyncer exposes the subset of application functionality required by the worker.
type CatalogSyncer interface {
	SyncProducts(ctx context.Context) (int, error)
}

// CatalogRefresher periodically rewrites the product table from the commerce
// catalog. A non-positive interval disables it.
type CatalogRefresher struct {
	syncer   CatalogSyncer
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewCatalogRefresher constructs the refresher.
func NewCatalogRefresher(syncer CatalogSyncer, interval time.Duration, logger *slog.Logger) *CatalogRefresher {
	return &CatalogRefresher{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

// Enabled reports whether Start launches a background loop.
func (r *CatalogRefresher) Enabled() bool {
	return r.interval > 0
}

// Start launches background refreshing.
func (r *CatalogRefresher) Start(ctx context.Context) {
	if !r.Enabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(runCtx)
}

// Stop waits for an in-flight refresh to finish.
func (r *CatalogRefresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *CatalogRefresher) loop(ctx context.Context) {
	defer r.wg.Done()
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			timer.Reset(r.refresh(ctx))
		}
	}
}

// refresh runs one sync and returns the delay before the next one.
func (r *CatalogRefresher) refresh(ctx context.Context) time.Duration {
	count, err := r.syncer.SyncProducts(ctx)
	if err == nil {
		r.logger.Info("catalog refreshed", slog.Int("rows", count))
		return r.interval
	}

	var limited tiendanube.TooManyRequestsError
	switch {
	case errors.As(err, &limited) && limited.RetryAfter > 0:
		r.logger.Warn("catalog refresh rate limited", slog.Duration("retry_after", limited.RetryAfter))
		return limited.RetryAfter
	case errors.Is(err, domainErrors.ErrEmptyCatalog):
		r.logger.Warn("catalog refresh skipped", slog.String("reason", err.Error()))
	case ctx.Err() != nil:
	default:
		r.logger.Error("catalog refresh failed", slog.String("error", err.Error()))
	}
	return r.interval
}
