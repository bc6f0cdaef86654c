package test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

// WebhookFacadeStub provides controllable behaviour for the webhook endpoint.
type WebhookFacadeStub struct {
	HandleFn func(context.Context, string, model.Event) (usecase.Result, error)
}

// HandleWebhook delegates to provided function or reports success.
func (s WebhookFacadeStub) HandleWebhook(ctx context.Context, orderID string, event model.Event) (usecase.Result, error) {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, orderID, event)
	}
	return usecase.ResultSynced, nil
}

// CatalogFacadeStub simulates catalog synchronization.
type CatalogFacadeStub struct {
	SyncFn func(context.Context) (int, error)
}

// SyncProducts executes configured handler or reports one row.
func (s CatalogFacadeStub) SyncProducts(ctx context.Context) (int, error) {
	if s.SyncFn != nil {
		return s.SyncFn(ctx)
	}
	return 1, nil
}

// SyncFacadeStub aggregates the full set of operations used across handlers.
type SyncFacadeStub struct {
	WebhookFacadeStub
	CatalogFacadeStub
}

// CatalogSyncerStub counts scheduled catalog runs.
type CatalogSyncerStub struct {
	mu    sync.Mutex
	calls int32
	Err   error
	Rows  int
}

// SyncProducts records the call.
func (s *CatalogSyncerStub) SyncProducts(ctx context.Context) (int, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Rows, s.Err
}

// Calls returns number of recorded runs.
func (s *CatalogSyncerStub) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}
