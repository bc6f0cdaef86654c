package tiendanube

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sheetsync/internal/config"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

// Module exposes the commerce client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (usecase.CommerceSource, error) {
	return NewHTTPClient(Options{
		BaseURL:   p.Config.CommerceAPIURL,
		StoreID:   p.Config.CommerceStoreID,
		Token:     p.Config.CommerceToken,
		UserAgent: p.Config.CommerceUserAgent,
		Timeout:   p.Config.HTTPTimeout,
	}, p.Logger)
}
