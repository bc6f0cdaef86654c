package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

// StockLedger applies counter deltas to product rows keyed by variant id.
type StockLedger struct {
	products repository.ProductRepository
	locks    Locker
	logger   *slog.Logger
}

// NewStockLedger constructs StockLedger.
func NewStockLedger(products repository.ProductRepository, locks Locker, logger *slog.Logger) *StockLedger {
	return &StockLedger{products: products, locks: locks, logger: logger}
}

// Apply adds delta to the counters of variantID. The read-modify-write runs
// under the variant lock. A missing variant is logged and reported as
// ErrMissingVariant without writing anything.
func (l *StockLedger) Apply(ctx context.Context, variantID string, delta model.Delta) error {
	if delta.IsZero() {
		return nil
	}

	unlock, err := l.locks.Lock(ctx, variantLockKey(variantID))
	if err != nil {
		return fmt.Errorf("lock variant %s: %w", variantID, err)
	}
	defer unlock()

	row, err := l.products.FindByVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			l.logger.Warn("stock update skipped, variant missing",
				slog.String("variant_id", variantID),
				slog.Int64("delta_on_hand", delta.OnHand),
				slog.Int64("delta_reserved", delta.Reserved),
			)
			return domainErrors.ErrMissingVariant
		}
		return err
	}

	onHand := row.OnHand + delta.OnHand
	reserved := row.Reserved + delta.Reserved
	if err := l.products.UpdateStock(ctx, variantID, onHand, reserved); err != nil {
		return fmt.Errorf("%w: update stock for %s: %w", domainErrors.ErrStoreWrite, variantID, err)
	}

	l.logger.Debug("stock updated",
		slog.String("variant_id", variantID),
		slog.Int64("on_hand", onHand),
		slog.Int64("reserved", reserved),
	)
	return nil
}

func variantLockKey(variantID string) string {
	return "variant:" + variantID
}

func orderLockKey(orderID string) string {
	return "order:" + orderID
}
