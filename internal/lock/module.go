package lock

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/sheetsync/internal/config"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

// Module provides the per-key locker: Redis when an address is configured,
// an in-process mutex otherwise.
var Module = fx.Provide(newLocker)

type lockerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newLocker(p lockerParams) usecase.Locker {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("using in-process locks")
		return NewLocal()
	}

	client := redis.NewClient(&redis.Options{Addr: p.Config.RedisAddr})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis ping failed", slog.String("addr", p.Config.RedisAddr), slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	p.Logger.Info("using redis locks", slog.String("addr", p.Config.RedisAddr))
	return NewRedis(client, p.Config.LockTTL, p.Logger)
}
