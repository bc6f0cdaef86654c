package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

// Result reports what happened to a webhook delivery.
type Result string

const (
	ResultSynced  Result = "synced"
	ResultIgnored Result = "ignored"
)

// OrderSync runs the webhook pipeline: fetch, guard, reconcile, write.
type OrderSync struct {
	commerce  CommerceSource
	orders    repository.OrderRepository
	items     repository.OrderItemRepository
	ledger    *StockLedger
	locks     Locker
	publisher OrderEventPublisher
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// NewOrderSync constructs OrderSync.
func NewOrderSync(
	commerce CommerceSource,
	orders repository.OrderRepository,
	items repository.OrderItemRepository,
	ledger *StockLedger,
	locks Locker,
	publisher OrderEventPublisher,
	logger *slog.Logger,
) *OrderSync {
	return &OrderSync{
		commerce:  commerce,
		orders:    orders,
		items:     items,
		ledger:    ledger,
		locks:     locks,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// Handle processes one webhook delivery for orderID. Replays of the last
// recorded event return ResultIgnored without touching items or stock.
func (s *OrderSync) Handle(ctx context.Context, orderID string, event model.Event) (Result, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", fmt.Errorf("%w: missing order id", domainErrors.ErrValidation)
	}
	if !event.Valid() {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrUnknownEvent, event)
	}

	order, err := s.commerce.GetOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%w: order %s: %w", domainErrors.ErrUpstreamFetch, orderID, err)
	}
	if order.ID == "" {
		order.ID = orderID
	}

	unlock, err := s.locks.Lock(ctx, orderLockKey(order.ID))
	if err != nil {
		return "", fmt.Errorf("lock order %s: %w", order.ID, err)
	}
	defer unlock()

	existing, err := s.orders.Find(ctx, order.ID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return "", fmt.Errorf("read order %s: %w", order.ID, err)
		}
		existing = nil
	}

	if Seen(existing, event) {
		s.logger.Info("duplicate webhook ignored", slog.String("order_id", order.ID), slog.String("event", event.String()))
		return ResultIgnored, nil
	}

	row, isUpdate := Reconcile(existing, *order, event, s.now())
	if err := s.orders.Save(ctx, row); err != nil {
		return "", fmt.Errorf("%w: save order %s: %w", domainErrors.ErrStoreWrite, order.ID, err)
	}

	deltas := ItemDeltas(*order, event)
	itemRows := make([]model.OrderItemRow, 0, len(order.Items))
	for i, item := range order.Items {
		if err := s.ledger.Apply(ctx, item.VariantID, deltas[i]); err != nil && !errors.Is(err, domainErrors.ErrMissingVariant) {
			return "", err
		}
		itemRows = append(itemRows, model.OrderItemRow{
			ID:        s.newID(),
			OrderID:   order.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Event:     event,
		})
	}

	if len(itemRows) > 0 {
		if err := s.items.Append(ctx, itemRows); err != nil {
			// last_event is already stored, so a redelivery will be ignored.
			s.logger.Error("item log append failed after stock update",
				slog.String("order_id", order.ID),
				slog.String("event", event.String()),
				slog.Int("items", len(itemRows)),
				slog.String("error", err.Error()),
			)
			return "", fmt.Errorf("%w: append items for %s: %w", domainErrors.ErrStoreWrite, order.ID, err)
		}
	}

	s.logger.Info("order synced",
		slog.String("order_id", order.ID),
		slog.String("event", event.String()),
		slog.String("status", string(row.Status)),
		slog.Bool("updated", isUpdate),
		slog.Int("items", len(itemRows)),
	)

	s.publish(ctx, row, isUpdate, itemRows)
	return ResultSynced, nil
}

func (s *OrderSync) publish(ctx context.Context, row model.OrderRow, isUpdate bool, items []model.OrderItemRow) {
	if s.publisher == nil {
		return
	}
	msg := model.OrderSynced{
		EventID:    s.newID(),
		OrderID:    row.OrderID,
		Event:      row.LastEvent,
		Status:     row.Status,
		Updated:    isUpdate,
		Items:      items,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishOrderSynced(ctx, msg); err != nil {
		s.logger.Warn("publish order synced failed", slog.String("order_id", row.OrderID), slog.String("error", err.Error()))
	}
}
