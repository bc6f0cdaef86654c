package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// CommerceStub serves orders and products from memory.
type CommerceStub struct {
	mu sync.Mutex

	Orders      map[string]model.Order
	Products    []model.Product
	OrderErr    error
	ProductsErr error
	ProductsFn  func(context.Context) ([]model.Product, error)

	OrderCalls   []string
	ProductCalls int
}

// GetOrder returns configured order or not found.
func (s *CommerceStub) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.OrderCalls = append(s.OrderCalls, orderID)
	if s.OrderErr != nil {
		return nil, s.OrderErr
	}
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &order, nil
}

// ListAllProducts returns configured catalog.
func (s *CommerceStub) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	s.ProductCalls++
	fn := s.ProductsFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	if s.ProductsErr != nil {
		return nil, s.ProductsErr
	}
	return s.Products, nil
}

// SetOrder stores an order under its id.
func (s *CommerceStub) SetOrder(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]model.Order)
	}
	s.Orders[order.ID] = order
}

// LockerStub records acquired keys and never blocks.
type LockerStub struct {
	mu sync.Mutex

	Keys     []string
	Released []string
	Err      error
}

// Lock records key and returns a release func.
func (s *LockerStub) Lock(ctx context.Context, key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.Keys = append(s.Keys, key)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.Released = append(s.Released, key)
	}, nil
}

// PublisherStub records published notifications.
type PublisherStub struct {
	mu sync.Mutex

	Events []model.OrderSynced
	Err    error
}

// PublishOrderSynced stores the event and returns the configured error.
func (s *PublisherStub) PublishOrderSynced(ctx context.Context, event model.OrderSynced) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return s.Err
}
