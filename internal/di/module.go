package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/sheetsync/internal/adapter/tiendanube"
	"github.com/polkiloo/sheetsync/internal/app"
	"github.com/polkiloo/sheetsync/internal/config"
	"github.com/polkiloo/sheetsync/internal/lock"
	"github.com/polkiloo/sheetsync/internal/logger"
	"github.com/polkiloo/sheetsync/internal/publisher"
	"github.com/polkiloo/sheetsync/internal/server/http/handlers"
	"github.com/polkiloo/sheetsync/internal/server/http/router"
	"github.com/polkiloo/sheetsync/internal/storage"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		tiendanube.Module,
		storage.Module,
		lock.Module,
		publisher.Module,
		usecase.Module,
		fx.Provide(func(f *app.SyncFacade) handlers.SyncFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
