package usecase

import (
	"context"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// CommerceSource is the read-only view of the commerce platform.
type CommerceSource interface {
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
}

// Locker serializes work on a key across concurrent requests.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// OrderEventPublisher announces orders that were written to the store.
type OrderEventPublisher interface {
	PublishOrderSynced(ctx context.Context, event model.OrderSynced) error
}
