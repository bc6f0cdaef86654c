package usecase

import (
	"context"
	"errors"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

// DuplicateGuard detects replays of an already recorded (order, event) pair.
//
// Only the last recorded event of an order is compared, so a replay of an
// older event that has since been superseded is not detected.
type DuplicateGuard struct {
	orders repository.OrderRepository
}

// NewDuplicateGuard constructs DuplicateGuard.
func NewDuplicateGuard(orders repository.OrderRepository) *DuplicateGuard {
	return &DuplicateGuard{orders: orders}
}

// IsDuplicate reports whether orderID already has event recorded as its last event.
func (g *DuplicateGuard) IsDuplicate(ctx context.Context, orderID string, event model.Event) (bool, error) {
	row, err := g.orders.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return Seen(row, event), nil
}

// Seen is the read-free form of IsDuplicate for an already loaded row.
func Seen(existing *model.OrderRow, event model.Event) bool {
	return existing != nil && existing.LastEvent == event
}
