package usecase_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	testhelpers "github.com/polkiloo/sheetsync/internal/test"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

func TestStockLedger_ApplyAddsDelta(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.ProductRow{VariantID: "v1", OnHand: 10, Reserved: 2})
	locks := &testhelpers.LockerStub{}
	ledger := usecase.NewStockLedger(products, locks, discardLogger())

	if err := ledger.Apply(context.Background(), "v1", model.Delta{OnHand: -3, Reserved: -2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row, _ := products.Row("v1")
	if row.OnHand != 7 || row.Reserved != 0 {
		t.Fatalf("unexpected counters on_hand=%d reserved=%d", row.OnHand, row.Reserved)
	}
	want := []string{"variant:v1"}
	if !reflect.DeepEqual(locks.Keys, want) || !reflect.DeepEqual(locks.Released, want) {
		t.Fatalf("unexpected lock usage keys=%v released=%v", locks.Keys, locks.Released)
	}
}

func TestStockLedger_ZeroDeltaIsNoop(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.ProductRow{VariantID: "v1", OnHand: 10})
	locks := &testhelpers.LockerStub{}
	ledger := usecase.NewStockLedger(products, locks, discardLogger())

	if err := ledger.Apply(context.Background(), "v1", model.Delta{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products.Updates) != 0 || len(locks.Keys) != 0 {
		t.Fatalf("zero delta must not lock or write, updates=%d locks=%v", len(products.Updates), locks.Keys)
	}
}

func TestStockLedger_MissingVariant(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub()
	ledger := usecase.NewStockLedger(products, &testhelpers.LockerStub{}, discardLogger())

	err := ledger.Apply(context.Background(), "ghost", model.Delta{Reserved: 1})

	if !errors.Is(err, domainErrors.ErrMissingVariant) {
		t.Fatalf("expected missing variant error, got %v", err)
	}
	if len(products.Updates) != 0 {
		t.Fatalf("missing variant must not be written")
	}
}

func TestStockLedger_CountersMayGoNegative(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.ProductRow{VariantID: "v1"})
	ledger := usecase.NewStockLedger(products, &testhelpers.LockerStub{}, discardLogger())

	if err := ledger.Apply(context.Background(), "v1", model.Delta{OnHand: -4, Reserved: -4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row, _ := products.Row("v1")
	if row.OnHand != -4 || row.Reserved != -4 {
		t.Fatalf("unexpected counters on_hand=%d reserved=%d", row.OnHand, row.Reserved)
	}
}

func TestStockLedger_WriteFailure(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.ProductRow{VariantID: "v1"})
	products.UpdateErr = errors.New("quota exceeded")
	ledger := usecase.NewStockLedger(products, &testhelpers.LockerStub{}, discardLogger())

	if err := ledger.Apply(context.Background(), "v1", model.Delta{Reserved: 1}); !errors.Is(err, domainErrors.ErrStoreWrite) {
		t.Fatalf("expected store write error, got %v", err)
	}
}

func TestStockLedger_LockFailure(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.ProductRow{VariantID: "v1"})
	lockErr := errors.New("lock busy")
	ledger := usecase.NewStockLedger(products, &testhelpers.LockerStub{Err: lockErr}, discardLogger())

	err := ledger.Apply(context.Background(), "v1", model.Delta{Reserved: 1})

	if !errors.Is(err, lockErr) {
		t.Fatalf("expected lock error, got %v", err)
	}
	if len(products.Updates) != 0 {
		t.Fatalf("nothing may be written without the lock")
	}
}
