package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthText is the body served on GET /.
const HealthText = "Tiendanube webhook bridge is running"

// Health handles GET /.
func Health(c *gin.Context) {
	c.String(http.StatusOK, HealthText)
}
