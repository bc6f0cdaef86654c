package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sheetsync/internal/config"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

// Module provides the synchronization use cases to the fx container.
var Module = fx.Provide(
	NewDuplicateGuard,
	NewStockLedger,
	NewOrderSync,
	newCatalogSync,
)

type catalogParams struct {
	fx.In

	Config   *config.Config
	Commerce CommerceSource
	Products repository.ProductRepository
	Logger   *slog.Logger
}

func newCatalogSync(p catalogParams) *CatalogSync {
	names := NewNameResolver(p.Config.NameLocales, p.Config.NameFallback)
	return NewCatalogSync(p.Commerce, p.Products, names, CatalogMode(p.Config.CatalogSyncMode), p.Logger)
}
