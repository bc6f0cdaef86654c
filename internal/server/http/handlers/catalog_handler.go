package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/server/http/dto"
)

// CatalogHandler triggers catalog synchronization.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Sync handles POST /sync-products.
func (h *CatalogHandler) Sync(c *gin.Context) {
	count, err := h.facade.SyncProducts(c.Request.Context())
	if err != nil {
		if errors.Is(err, domainErrors.ErrEmptyCatalog) {
			c.JSON(http.StatusOK, dto.SyncProductsResponse{Success: false, Message: "No products found"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.SyncProductsResponse{Success: true, Count: count})
}
