package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/sheetsync/internal/config"
	"github.com/polkiloo/sheetsync/internal/worker"
)

// Module wires the sync facade, the webhook server and the catalog refresher.
// The refresher hook is registered first so it outlives the server on stop.
var Module = fx.Options(
	fx.Provide(
		NewSyncFacade,
		newHTTPServer,
		newCatalogRefresher,
	),
	fx.Invoke(registerRefresher, registerServer),
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
)

// listen is replaced in tests.
var listen = net.Listen

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}

type workerParams struct {
	fx.In

	Facade *SyncFacade
	Config *config.Config
	Logger *slog.Logger
}

func newCatalogRefresher(p workerParams) *worker.CatalogRefresher {
	return worker.NewCatalogRefresher(p.Facade, p.Config.CatalogSyncInterval, p.Logger)
}

type refresherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *slog.Logger
	Worker    *worker.CatalogRefresher
	Config    *config.Config
}

func registerRefresher(p refresherParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !p.Worker.Enabled() {
				p.Logger.Info("catalog refresher disabled")
				return nil
			}
			p.Logger.Info("catalog refresher enabled",
				slog.Duration("interval", p.Config.CatalogSyncInterval),
				slog.String("mode", p.Config.CatalogSyncMode),
			)
			p.Worker.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			p.Worker.Stop()
			return nil
		},
	})
}

type serverLifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Config     *config.Config
}

// registerServer binds the listen address on start, so a taken port fails
// the application instead of surfacing later. Errors from a running server
// ask fx to shut down.
func registerServer(p serverLifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := listen("tcp", p.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", p.Server.Addr, err)
			}
			p.Logger.Info("webhook bridge listening",
				slog.String("addr", ln.Addr().String()),
				slog.String("backend", p.Config.StoreBackend),
			)
			go func() {
				if err := p.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := shutdownContext(ctx, p.Config.ShutdownTimeout)
			defer cancel()

			if err := p.Server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			p.Logger.Info("webhook bridge stopped")
			return nil
		},
	})
}

// shutdownContext bounds ctx by timeout unless the caller already set a
// deadline.
func shutdownContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
