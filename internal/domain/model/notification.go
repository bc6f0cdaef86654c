package model

import "time"

// OrderSynced describes an order that was reconciled into the store.
type OrderSynced struct {
	EventID    string         `json:"event_id"`
	OrderID    string         `json:"order_id"`
	Event      Event          `json:"event"`
	Status     OrderStatus    `json:"status"`
	Updated    bool           `json:"updated"`
	Items      []OrderItemRow `json:"items"`
	OccurredAt time.Time      `json:"occurred_at"`
}
