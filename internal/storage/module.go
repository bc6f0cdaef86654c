package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sheetsync/internal/config"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
	"github.com/polkiloo/sheetsync/internal/storage/postgres"
	"github.com/polkiloo/sheetsync/internal/storage/sheets"
)

// Module wires the configured tabular backend and its repositories.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
		func(f repository.Factory) repository.OrderItemRepository { return f.OrderItems() },
		func(f repository.Factory) repository.ProductRepository { return f.Products() },
	),
)

type factoryParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

// sqlStore is the part of the Postgres backend the lifecycle needs.
type sqlStore interface {
	repository.Factory
	HealthCheck(ctx context.Context) error
	Close()
}

var (
	openPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (sqlStore, error) {
		st, err := postgres.New(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	openSheets = func(ctx context.Context, opts sheets.Options, logger *slog.Logger) (*sheets.Storage, error) {
		return sheets.New(ctx, opts, logger)
	}
)

func newFactory(p factoryParams) (repository.Factory, error) {
	switch p.Config.StoreBackend {
	case config.BackendPostgres:
		st, err := openPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := st.HealthCheck(ctx); err != nil {
					return fmt.Errorf("postgres health check: %w", err)
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				st.Close()
				return nil
			},
		})
		p.Logger.Info("store backend selected", slog.String("backend", config.BackendPostgres))
		return st, nil
	case config.BackendSheets, "":
		st, err := openSheets(p.Ctx, sheets.Options{
			SpreadsheetID: p.Config.SheetID,
			ClientEmail:   p.Config.GoogleClientEmail,
			PrivateKey:    p.Config.GooglePrivateKey,
		}, p.Logger)
		if err != nil {
			return nil, fmt.Errorf("open sheets store: %w", err)
		}
		p.Logger.Info("store backend selected", slog.String("backend", config.BackendSheets))
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", p.Config.StoreBackend)
	}
}
