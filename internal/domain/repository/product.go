package repository

import (
	"context"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// ProductRepository addresses stored product rows by variant id.
type ProductRepository interface {
	FindByVariant(ctx context.Context, variantID string) (*model.ProductRow, error)
	// UpdateStock writes only the on-hand and reserved counters.
	UpdateStock(ctx context.Context, variantID string, onHand, reserved int64) error
	Upsert(ctx context.Context, row model.ProductRow) error
	// ReplaceAll overwrites the whole table with rows.
	ReplaceAll(ctx context.Context, rows []model.ProductRow) error
}
