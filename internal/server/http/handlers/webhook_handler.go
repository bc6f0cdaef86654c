package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/server/http/dto"
	"github.com/polkiloo/sheetsync/internal/usecase"
)

// WebhookHandler receives commerce order events.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Handle handles POST /webhook.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload: " + err.Error()})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing order id"})
		return
	}

	// Only the known event kinds carry a stock effect; anything else is a
	// client error and never reaches the commerce API.
	event, err := model.ParseEvent(req.Event)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.facade.HandleWebhook(c.Request.Context(), string(req.ID), event)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domainErrors.ErrValidation) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if result == usecase.ResultIgnored {
		c.JSON(http.StatusOK, dto.WebhookResponse{Ignored: true})
		return
	}
	c.JSON(http.StatusOK, dto.WebhookResponse{Success: true})
}
