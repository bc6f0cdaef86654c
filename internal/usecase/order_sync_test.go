package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	testhelpers "github.com/polkiloo/sheetsync/internal/test"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

type orderSyncFixture struct {
	commerce  *testhelpers.CommerceStub
	orders    *testhelpers.OrderRepositoryStub
	items     *testhelpers.OrderItemRepositoryStub
	products  *testhelpers.ProductRepositoryStub
	locks     *testhelpers.LockerStub
	publisher *testhelpers.PublisherStub
	sync      *usecase.OrderSync
}

func newOrderSyncFixture(products ...model.ProductRow) *orderSyncFixture {
	f := &orderSyncFixture{
		commerce:  &testhelpers.CommerceStub{},
		orders:    testhelpers.NewOrderRepositoryStub(),
		items:     &testhelpers.OrderItemRepositoryStub{},
		products:  testhelpers.NewProductRepositoryStub(products...),
		locks:     &testhelpers.LockerStub{},
		publisher: &testhelpers.PublisherStub{},
	}
	ledger := usecase.NewStockLedger(f.products, f.locks, discardLogger())
	f.sync = usecase.NewOrderSync(f.commerce, f.orders, f.items, ledger, f.locks, f.publisher, discardLogger())
	return f
}

func orderWith(id string, items ...model.LineItem) model.Order {
	return model.Order{ID: id, Status: "open", Items: items}
}

func item(variantID string, qty int64) model.LineItem {
	return model.LineItem{VariantID: variantID, Quantity: qty, Price: decimal.NewFromInt(250)}
}

func mustHandle(t *testing.T, f *orderSyncFixture, orderID string, event model.Event) usecase.Result {
	t.Helper()
	res, err := f.sync.Handle(context.Background(), orderID, event)
	if err != nil {
		t.Fatalf("%s %s: unexpected error: %v", orderID, event, err)
	}
	return res
}

func assertCounters(t *testing.T, f *orderSyncFixture, variantID string, onHand, reserved int64) {
	t.Helper()
	row, ok := f.products.Row(variantID)
	if !ok {
		t.Fatalf("variant %s not found", variantID)
	}
	if row.OnHand != onHand || row.Reserved != reserved {
		t.Fatalf("variant %s: expected on_hand=%d reserved=%d, got on_hand=%d reserved=%d",
			variantID, onHand, reserved, row.OnHand, row.Reserved)
	}
}

func TestOrderSync_CreateReservesStock(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1", OnHand: 10})
	f.commerce.SetOrder(orderWith("100", item("v1", 3)))

	if res := mustHandle(t, f, "100", model.EventOrderCreated); res != usecase.ResultSynced {
		t.Fatalf("unexpected result %q", res)
	}

	assertCounters(t, f, "v1", 10, 3)

	saved := f.orders.Rows["100"]
	if saved.Status != model.OrderStatusOpen || saved.LastEvent != model.EventOrderCreated {
		t.Fatalf("unexpected order row %+v", saved)
	}
	if !saved.StockReserved || saved.StockDiscounted {
		t.Fatalf("unexpected stock flags %+v", saved)
	}
	if saved.CreatedAt == "" {
		t.Fatalf("created_at must be set on insert")
	}

	if len(f.items.Rows) != 1 {
		t.Fatalf("expected 1 item row, got %d", len(f.items.Rows))
	}
	got := f.items.Rows[0]
	if got.OrderID != "100" || got.VariantID != "v1" || got.Quantity != 3 || got.Event != model.EventOrderCreated {
		t.Fatalf("unexpected item row %+v", got)
	}
	if got.ID == "" {
		t.Fatalf("item row must carry an id")
	}
}

func TestOrderSync_CreateThenPaid(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1", OnHand: 10})
	f.commerce.SetOrder(orderWith("100", item("v1", 3)))

	mustHandle(t, f, "100", model.EventOrderCreated)
	createdAt := f.orders.Rows["100"].CreatedAt
	mustHandle(t, f, "100", model.EventOrderPaid)

	assertCounters(t, f, "v1", 7, 0)

	saved := f.orders.Rows["100"]
	if saved.Status != model.OrderStatusPaid {
		t.Fatalf("unexpected status %q", saved.Status)
	}
	if saved.CreatedAt != createdAt {
		t.Fatalf("created_at changed from %q to %q", createdAt, saved.CreatedAt)
	}
	if saved.PaidAt == "" || !saved.StockDiscounted || saved.StockReserved {
		t.Fatalf("unexpected paid row %+v", saved)
	}

	if len(f.publisher.Events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(f.publisher.Events))
	}
	if f.publisher.Events[0].Updated || !f.publisher.Events[1].Updated {
		t.Fatalf("unexpected updated flags %+v", f.publisher.Events)
	}
	if f.publisher.Events[1].Status != model.OrderStatusPaid {
		t.Fatalf("unexpected published status %q", f.publisher.Events[1].Status)
	}
}

func TestOrderSync_CancelReleasesReservation(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1", OnHand: 10})
	f.commerce.SetOrder(orderWith("100", item("v1", 2)))

	mustHandle(t, f, "100", model.EventOrderCreated)
	mustHandle(t, f, "100", model.EventOrderCancelled)

	assertCounters(t, f, "v1", 10, 0)
	if len(f.items.Rows) != 2 {
		t.Fatalf("expected 2 item rows, got %d", len(f.items.Rows))
	}
}

func TestOrderSync_ReplayIsIgnored(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1", OnHand: 10})
	f.commerce.SetOrder(orderWith("100", item("v1", 3)))

	mustHandle(t, f, "100", model.EventOrderPaid)
	before, _ := f.products.Row("v1")

	if res := mustHandle(t, f, "100", model.EventOrderPaid); res != usecase.ResultIgnored {
		t.Fatalf("expected replay to be ignored, got %q", res)
	}

	after, _ := f.products.Row("v1")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("replay changed stock: before %+v after %+v", before, after)
	}
	if len(f.items.Rows) != 1 || len(f.orders.Saves) != 1 || len(f.publisher.Events) != 1 {
		t.Fatalf("replay wrote data: items=%d saves=%d events=%d", len(f.items.Rows), len(f.orders.Saves), len(f.publisher.Events))
	}
}

func TestOrderSync_ZeroDeltaEventsStillLogItems(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1", OnHand: 10})
	f.commerce.SetOrder(orderWith("100", item("v1", 3)))

	mustHandle(t, f, "100", model.EventOrderPacked)

	if len(f.products.Updates) != 0 {
		t.Fatalf("packed must not touch stock, got %d updates", len(f.products.Updates))
	}
	if len(f.items.Rows) != 1 || f.items.Rows[0].Event != model.EventOrderPacked {
		t.Fatalf("expected one packed item row, got %+v", f.items.Rows)
	}
}

func TestOrderSync_MissingVariantStillAppendsItem(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1", OnHand: 10})
	f.commerce.SetOrder(orderWith("100", item("ghost", 1), item("v1", 1)))

	if res := mustHandle(t, f, "100", model.EventOrderCreated); res != usecase.ResultSynced {
		t.Fatalf("unexpected result %q", res)
	}
	if len(f.items.Rows) != 2 {
		t.Fatalf("expected 2 item rows, got %d", len(f.items.Rows))
	}
	assertCounters(t, f, "v1", 10, 1)
}

func TestOrderSync_Validation(t *testing.T) {
	f := newOrderSyncFixture()

	if _, err := f.sync.Handle(context.Background(), " ", model.EventOrderCreated); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}

	_, err := f.sync.Handle(context.Background(), "100", model.Event("order/refunded"))
	if !errors.Is(err, domainErrors.ErrUnknownEvent) || !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected unknown event validation error, got %v", err)
	}

	if len(f.commerce.OrderCalls) != 0 {
		t.Fatalf("invalid input must not reach upstream, got %v", f.commerce.OrderCalls)
	}
}

func TestOrderSync_UpstreamFailureWritesNothing(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1"})
	f.commerce.OrderErr = errors.New("connection reset")

	_, err := f.sync.Handle(context.Background(), "100", model.EventOrderCreated)

	if !errors.Is(err, domainErrors.ErrUpstreamFetch) {
		t.Fatalf("expected upstream fetch error, got %v", err)
	}
	if len(f.orders.Saves) != 0 || len(f.items.Rows) != 0 || len(f.products.Updates) != 0 {
		t.Fatalf("upstream failure wrote data: saves=%d items=%d updates=%d", len(f.orders.Saves), len(f.items.Rows), len(f.products.Updates))
	}
}

func TestOrderSync_UnknownOrderUpstream(t *testing.T) {
	f := newOrderSyncFixture()

	_, err := f.sync.Handle(context.Background(), "404", model.EventOrderCreated)

	if !errors.Is(err, domainErrors.ErrUpstreamFetch) || !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected wrapped not found upstream error, got %v", err)
	}
}

func TestOrderSync_SaveFailure(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1"})
	f.commerce.SetOrder(orderWith("100", item("v1", 1)))
	f.orders.SaveErr = errors.New("quota exceeded")

	_, err := f.sync.Handle(context.Background(), "100", model.EventOrderCreated)

	if !errors.Is(err, domainErrors.ErrStoreWrite) {
		t.Fatalf("expected store write error, got %v", err)
	}
	if len(f.products.Updates) != 0 || len(f.items.Rows) != 0 {
		t.Fatalf("failed save must stop the pipeline")
	}
}

func TestOrderSync_ItemAppendFailure(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1"})
	f.commerce.SetOrder(orderWith("100", item("v1", 1)))
	f.items.Err = errors.New("quota exceeded")

	_, err := f.sync.Handle(context.Background(), "100", model.EventOrderCreated)

	if !errors.Is(err, domainErrors.ErrStoreWrite) {
		t.Fatalf("expected store write error, got %v", err)
	}
	if len(f.publisher.Events) != 0 {
		t.Fatalf("failed append must not publish")
	}
}

// The order row already records the event when the item append fails, so a
// redelivery is treated as a replay and the audit rows are not written.
func TestOrderSync_RedeliveryAfterItemAppendFailureIsIgnored(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1", OnHand: 10})
	var logs bytes.Buffer
	ledger := usecase.NewStockLedger(f.products, f.locks, discardLogger())
	f.sync = usecase.NewOrderSync(f.commerce, f.orders, f.items, ledger, f.locks, f.publisher, slog.New(slog.NewTextHandler(&logs, nil)))
	f.commerce.SetOrder(orderWith("100", item("v1", 3)))
	f.items.Err = errors.New("quota exceeded")

	if _, err := f.sync.Handle(context.Background(), "100", model.EventOrderPaid); !errors.Is(err, domainErrors.ErrStoreWrite) {
		t.Fatalf("expected store write error, got %v", err)
	}
	if !strings.Contains(logs.String(), "item log append failed after stock update") || !strings.Contains(logs.String(), "order_id=100") {
		t.Fatalf("expected the lost item rows to be logged, got %q", logs.String())
	}

	f.items.Err = nil
	if res := mustHandle(t, f, "100", model.EventOrderPaid); res != usecase.ResultIgnored {
		t.Fatalf("expected redelivery to be ignored, got %q", res)
	}

	if len(f.items.Rows) != 0 {
		t.Fatalf("expected no item rows, got %d", len(f.items.Rows))
	}
	assertCounters(t, f, "v1", 7, -3)
}

func TestOrderSync_PublishFailureIsNotFatal(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1"})
	f.commerce.SetOrder(orderWith("100", item("v1", 1)))
	f.publisher.Err = errors.New("broker down")

	if res := mustHandle(t, f, "100", model.EventOrderCreated); res != usecase.ResultSynced {
		t.Fatalf("unexpected result %q", res)
	}
}

func TestOrderSync_LocksOrderBeforeVariants(t *testing.T) {
	f := newOrderSyncFixture(model.ProductRow{VariantID: "v1"})
	f.commerce.SetOrder(orderWith("100", item("v1", 1)))

	mustHandle(t, f, "100", model.EventOrderCreated)

	want := []string{"order:100", "variant:v1"}
	if !reflect.DeepEqual(f.locks.Keys, want) {
		t.Fatalf("unexpected lock order %v", f.locks.Keys)
	}
	released := append([]string(nil), f.locks.Released...)
	sort.Strings(released)
	if !reflect.DeepEqual(released, want) {
		t.Fatalf("expected every lock released, got %v", f.locks.Released)
	}
}

func TestOrderSync_NilPublisher(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.ProductRow{VariantID: "v1"})
	commerce := &testhelpers.CommerceStub{}
	commerce.SetOrder(orderWith("100", item("v1", 1)))
	locks := &testhelpers.LockerStub{}
	ledger := usecase.NewStockLedger(products, locks, discardLogger())
	sync := usecase.NewOrderSync(commerce, testhelpers.NewOrderRepositoryStub(), &testhelpers.OrderItemRepositoryStub{}, ledger, locks, nil, discardLogger())

	res, err := sync.Handle(context.Background(), "100", model.EventOrderCreated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != usecase.ResultSynced {
		t.Fatalf("unexpected result %q", res)
	}
}

func TestOrderSync_ReserveThenCancelRestoresStock(t *testing.T) {
	variants := []string{testhelpers.VariantID(1), testhelpers.VariantID(2), testhelpers.VariantID(3)}
	rows := make([]model.ProductRow, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, model.ProductRow{VariantID: v, OnHand: 50})
	}
	f := newOrderSyncFixture(rows...)

	orderID := testhelpers.RandomOrderID(8)
	items := make([]model.LineItem, 0, len(variants))
	for _, v := range variants {
		items = append(items, item(v, testhelpers.RandomQuantity(5)))
	}
	f.commerce.SetOrder(orderWith(orderID, items...))

	mustHandle(t, f, orderID, model.EventOrderCreated)
	mustHandle(t, f, orderID, model.EventOrderCancelled)

	for _, v := range variants {
		assertCounters(t, f, v, 50, 0)
	}
	if len(f.items.Rows) != 2*len(variants) {
		t.Fatalf("expected %d item rows, got %d", 2*len(variants), len(f.items.Rows))
	}
}
