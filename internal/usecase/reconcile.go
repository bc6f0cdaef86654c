package usecase

import (
	"strings"
	"time"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// TimestampLayout is the format of every timestamp written to the store.
const TimestampLayout = time.RFC3339

var fulfilledSignals = map[string]struct{}{
	"shipped":   {},
	"fulfilled": {},
	"delivered": {},
}

// IsShipped reports whether any shipping signal of the fetched order
// indicates fulfillment. Shipping may be confirmed outside the webhook stream,
// so the event alone is not enough.
func IsShipped(order model.Order) bool {
	for _, signal := range []string{order.FulfillmentStatus, order.ShippingStatus, order.Status} {
		if _, ok := fulfilledSignals[strings.ToLower(strings.TrimSpace(signal))]; ok {
			return true
		}
	}
	return false
}

// DeriveStatus computes the stored status for an order after event.
func DeriveStatus(order model.Order, event model.Event) model.OrderStatus {
	switch {
	case IsShipped(order):
		return model.OrderStatusShipped
	case event == model.EventOrderPaid:
		return model.OrderStatusPaid
	case event == model.EventOrderFulfilled:
		return model.OrderStatusShipped
	}
	if s := strings.TrimSpace(order.Status); s != "" {
		return model.OrderStatus(strings.ToLower(s))
	}
	return model.OrderStatusOpen
}

// Reconcile computes the order row to store for event given the row already
// stored (nil when absent). The boolean reports whether an existing row is
// being overwritten.
//
// created_at is only written on insert, paid_at and shipped_at are written
// once and then carried forward unchanged. shipped_at needs a shipping signal
// on the fetched order; a fulfilled event alone moves the status only.
func Reconcile(existing *model.OrderRow, order model.Order, event model.Event, now time.Time) (model.OrderRow, bool) {
	stamp := now.UTC().Format(TimestampLayout)
	status := DeriveStatus(order, event)

	row := model.OrderRow{
		OrderID:         order.ID,
		Status:          status,
		UpdatedAt:       stamp,
		StockDiscounted: event == model.EventOrderPaid,
		StockReserved:   event.IsReservation(),
		LastEvent:       event,
	}

	isUpdate := existing != nil
	if isUpdate {
		row.CreatedAt = existing.CreatedAt
		row.PaidAt = existing.PaidAt
		row.ShippedAt = existing.ShippedAt
	} else {
		row.CreatedAt = stamp
	}

	if event == model.EventOrderPaid && row.PaidAt == "" {
		row.PaidAt = stamp
	}
	if IsShipped(order) && row.ShippedAt == "" {
		row.ShippedAt = stamp
	}

	return row, isUpdate
}

// ItemDeltas returns the counter movement for every line item of order.
func ItemDeltas(order model.Order, event model.Event) []model.Delta {
	deltas := make([]model.Delta, len(order.Items))
	for i, item := range order.Items {
		deltas[i] = event.StockDelta(item.Quantity)
	}
	return deltas
}
