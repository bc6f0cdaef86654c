package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

// OrderRepositoryStub keeps order rows in memory.
type OrderRepositoryStub struct {
	mu sync.Mutex

	Rows    map[string]model.OrderRow
	Saves   []model.OrderRow
	FindErr error
	SaveErr error
}

// NewOrderRepositoryStub constructs an empty order table.
func NewOrderRepositoryStub(rows ...model.OrderRow) *OrderRepositoryStub {
	s := &OrderRepositoryStub{Rows: make(map[string]model.OrderRow)}
	for _, r := range rows {
		s.Rows[r.OrderID] = r
	}
	return s
}

// Find returns stored row or not found.
func (s *OrderRepositoryStub) Find(ctx context.Context, orderID string) (*model.OrderRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	row, ok := s.Rows[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &row, nil
}

// Save records and stores the row.
func (s *OrderRepositoryStub) Save(ctx context.Context, row model.OrderRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.Rows == nil {
		s.Rows = make(map[string]model.OrderRow)
	}
	s.Rows[row.OrderID] = row
	s.Saves = append(s.Saves, row)
	return nil
}

// OrderItemRepositoryStub collects appended item rows.
type OrderItemRepositoryStub struct {
	mu sync.Mutex

	Rows []model.OrderItemRow
	Err  error
}

// Append stores rows unless configured to fail.
func (s *OrderItemRepositoryStub) Append(ctx context.Context, rows []model.OrderItemRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Rows = append(s.Rows, rows...)
	return nil
}

// StockUpdateCall stores information about UpdateStock invocations.
type StockUpdateCall struct {
	VariantID string
	OnHand    int64
	Reserved  int64
}

// ProductRepositoryStub keeps product rows in memory.
type ProductRepositoryStub struct {
	mu sync.Mutex

	Rows       map[string]model.ProductRow
	Updates    []StockUpdateCall
	Upserts    []model.ProductRow
	Replaced   [][]model.ProductRow
	FindErr    error
	UpdateErr  error
	UpsertErr  error
	ReplaceErr error
}

// NewProductRepositoryStub constructs product table with rows.
func NewProductRepositoryStub(rows ...model.ProductRow) *ProductRepositoryStub {
	s := &ProductRepositoryStub{Rows: make(map[string]model.ProductRow)}
	for _, r := range rows {
		s.Rows[r.VariantID] = r
	}
	return s
}

// FindByVariant returns stored row or not found.
func (s *ProductRepositoryStub) FindByVariant(ctx context.Context, variantID string) (*model.ProductRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	row, ok := s.Rows[variantID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &row, nil
}

// UpdateStock overwrites the counters of an existing row.
func (s *ProductRepositoryStub) UpdateStock(ctx context.Context, variantID string, onHand, reserved int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.Updates = append(s.Updates, StockUpdateCall{VariantID: variantID, OnHand: onHand, Reserved: reserved})
	row, ok := s.Rows[variantID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	row.OnHand = onHand
	row.Reserved = reserved
	s.Rows[variantID] = row
	return nil
}

// Upsert stores row by variant id.
func (s *ProductRepositoryStub) Upsert(ctx context.Context, row model.ProductRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	if s.Rows == nil {
		s.Rows = make(map[string]model.ProductRow)
	}
	s.Upserts = append(s.Upserts, row)
	s.Rows[row.VariantID] = row
	return nil
}

// ReplaceAll drops every row and stores the given ones.
func (s *ProductRepositoryStub) ReplaceAll(ctx context.Context, rows []model.ProductRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReplaceErr != nil {
		return s.ReplaceErr
	}
	s.Replaced = append(s.Replaced, rows)
	s.Rows = make(map[string]model.ProductRow, len(rows))
	for _, r := range rows {
		s.Rows[r.VariantID] = r
	}
	return nil
}

// Row returns a copy of the stored product row.
func (s *ProductRepositoryStub) Row(variantID string) (model.ProductRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.Rows[variantID]
	return row, ok
}

// FactoryStub hands out in-memory repositories.
type FactoryStub struct {
	OrderRepo     *OrderRepositoryStub
	OrderItemRepo *OrderItemRepositoryStub
	ProductRepo   *ProductRepositoryStub
}

// NewFactoryStub constructs a factory with empty tables.
func NewFactoryStub() *FactoryStub {
	return &FactoryStub{
		OrderRepo:     NewOrderRepositoryStub(),
		OrderItemRepo: &OrderItemRepositoryStub{},
		ProductRepo:   NewProductRepositoryStub(),
	}
}

// Orders returns the order table.
func (f *FactoryStub) Orders() repository.OrderRepository { return f.OrderRepo }

// OrderItems returns the item log.
func (f *FactoryStub) OrderItems() repository.OrderItemRepository { return f.OrderItemRepo }

// Products returns the product table.
func (f *FactoryStub) Products() repository.ProductRepository { return f.ProductRepo }
