package model

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
)

// Event identifies a commerce webhook event kind.
type Event string

const (
	EventOrderCreated   Event = "order/created"
	EventOrderUpdated   Event = "order/updated"
	EventOrderPaid      Event = "order/paid"
	EventOrderCancelled Event = "order/cancelled"
	EventOrderPacked    Event = "order/packed"
	EventOrderFulfilled Event = "order/fulfilled"
)

// Delta is a signed adjustment of the two stock counters of a product row.
type Delta struct {
	OnHand   int64
	Reserved int64
}

// IsZero reports whether the delta leaves both counters untouched.
func (d Delta) IsZero() bool {
	return d.OnHand == 0 && d.Reserved == 0
}

// stockEffect holds per-unit counter movements for an event.
type stockEffect struct {
	onHand   int64
	reserved int64
}

var stockEffects = map[Event]stockEffect{
	EventOrderCreated:   {onHand: 0, reserved: 1},
	EventOrderUpdated:   {onHand: 0, reserved: 1},
	EventOrderPaid:      {onHand: -1, reserved: -1},
	EventOrderCancelled: {onHand: 0, reserved: -1},
	EventOrderPacked:    {},
	EventOrderFulfilled: {},
}

// Events lists every known event kind.
func Events() []Event {
	return []Event{
		EventOrderCreated,
		EventOrderUpdated,
		EventOrderPaid,
		EventOrderCancelled,
		EventOrderPacked,
		EventOrderFulfilled,
	}
}

// ParseEvent converts a raw webhook event name into an Event.
func ParseEvent(raw string) (Event, error) {
	e := Event(strings.ToLower(strings.TrimSpace(raw)))
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrUnknownEvent, raw)
	}
	return e, nil
}

// Valid reports whether e is one of the known event kinds.
func (e Event) Valid() bool {
	_, ok := stockEffects[e]
	return ok
}

// IsReservation reports whether the event reserves stock for the order items.
func (e Event) IsReservation() bool {
	return e == EventOrderCreated || e == EventOrderUpdated
}

// StockDelta returns counter movements for a line item of the given quantity.
func (e Event) StockDelta(quantity int64) Delta {
	eff := stockEffects[e]
	return Delta{OnHand: eff.onHand * quantity, Reserved: eff.reserved * quantity}
}

func (e Event) String() string {
	return string(e)
}
