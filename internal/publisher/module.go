package publisher

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"

	"github.com/polkiloo/sheetsync/internal/config"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

// Module provides the order-synced publisher. Without brokers notifications
// are dropped.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) usecase.OrderEventPublisher {
	if len(p.Config.KafkaBrokers) == 0 {
		return Nop{}
	}

	k := NewKafka(p.Config.KafkaBrokers, p.Config.KafkaTopic)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return k.Close()
		},
	})
	p.Logger.Info("publishing order events",
		slog.String("brokers", strings.Join(p.Config.KafkaBrokers, ",")),
		slog.String("topic", p.Config.KafkaTopic),
	)
	return k
}
