package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheckController serves the liveness probe
type HealthCheckController struct{}

// NewHealthCheckController creates a health check controller instance
func NewHealthCheckController() *HealthCheckController {
	return &HealthCheckController{}
}

// Ping responds to the health probe
// @Summary      Health check
// @Description  Liveness probe for load balancers and monitors
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /ping [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"status":  "healthy",
	})
}
