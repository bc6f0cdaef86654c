package model

import "github.com/shopspring/decimal"

// OrderStatus describes the stored order lifecycle state.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the full order record returned by the commerce API.
type Order struct {
	ID                string
	Status            string
	CreatedAt         string
	PaidAt            string
	ShippedAt         string
	ShippingStatus    string
	FulfillmentStatus string
	UpdatedAt         string
	Items             []LineItem
}

// LineItem is a single purchased variant within an order.
type LineItem struct {
	VariantID string
	Quantity  int64
	Price     decimal.Decimal
}

// OrderRow is the stored representation of an order, one per order id.
type OrderRow struct {
	OrderID         string
	Status          OrderStatus
	CreatedAt       string
	PaidAt          string
	ShippedAt       string
	UpdatedAt       string
	StockDiscounted bool
	StockReserved   bool
	LastEvent       Event
}

// OrderItemRow is an append-only audit entry for a processed line item.
type OrderItemRow struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	VariantID string          `json:"variant_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Event     Event           `json:"event"`
}
