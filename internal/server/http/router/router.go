package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/sheetsync/internal/server/http/handlers"
	"github.com/polkiloo/sheetsync/internal/server/http/middleware"
)

// maxRequestBody caps decompressed request bodies.
const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.SyncFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	webhookHandler := handlers.NewWebhookHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)

	engine.GET("/", handlers.Health)
	engine.POST("/webhook", webhookHandler.Handle)
	engine.POST("/sync-products", catalogHandler.Sync)

	return engine
}
