package repository

import (
	"context"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// OrderRepository addresses stored order rows by order id.
type OrderRepository interface {
	// Find returns the row stored for orderID or domain errors.ErrNotFound.
	Find(ctx context.Context, orderID string) (*model.OrderRow, error)
	// Save overwrites the row stored for row.OrderID, or adds it when absent.
	Save(ctx context.Context, row model.OrderRow) error
}

// OrderItemRepository is the append-only item audit log.
type OrderItemRepository interface {
	Append(ctx context.Context, rows []model.OrderItemRow) error
}
