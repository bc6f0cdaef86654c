package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

// SyncFacade is the single entry point used by the HTTP handlers and the
// background refresher.
type SyncFacade struct {
	orders  *usecase.OrderSync
	guard   *usecase.DuplicateGuard
	catalog *usecase.CatalogSync
	logger  *slog.Logger
}

// NewSyncFacade builds the facade over the order pipeline, the replay guard
// and the catalog sync.
func NewSyncFacade(orders *usecase.OrderSync, guard *usecase.DuplicateGuard, catalog *usecase.CatalogSync, logger *slog.Logger) *SyncFacade {
	return &SyncFacade{orders: orders, guard: guard, catalog: catalog, logger: logger}
}

// HandleWebhook processes one webhook delivery. A replay of the stored last
// event is answered from the store without calling the commerce API; the
// pipeline repeats the check under the order lock.
func (f *SyncFacade) HandleWebhook(ctx context.Context, orderID string, event model.Event) (usecase.Result, error) {
	if id := strings.TrimSpace(orderID); id != "" && event.Valid() {
		dup, err := f.guard.IsDuplicate(ctx, id, event)
		switch {
		case err != nil:
			f.logger.Warn("duplicate pre-check failed", slog.String("order_id", id), slog.String("error", err.Error()))
		case dup:
			f.logger.Info("duplicate webhook ignored", slog.String("order_id", id), slog.String("event", event.String()))
			return usecase.ResultIgnored, nil
		}
	}
	return f.orders.Handle(ctx, orderID, event)
}

// SyncProducts rewrites the product table from the commerce catalog and
// returns the number of variant rows written.
func (f *SyncFacade) SyncProducts(ctx context.Context) (int, error) {
	return f.catalog.Sync(ctx)
}
