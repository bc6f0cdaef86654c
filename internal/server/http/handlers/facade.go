package handlers

import (
	"context"

	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

// WebhookFacade processes webhook deliveries.
type WebhookFacade interface {
	HandleWebhook(ctx context.Context, orderID string, event model.Event) (usecase.Result, error)
}

// CatalogFacade rewrites the product table from the commerce catalog.
type CatalogFacade interface {
	SyncProducts(ctx context.Context) (int, error)
}

// SyncFacade aggregates the full set of operations used across handlers.
type SyncFacade interface {
	WebhookFacade
	CatalogFacade
}
