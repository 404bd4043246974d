package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sales-service",
	})
}

// Ready handles GET /ready
func (h *Handlers) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "sales-service",
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    "1.0.0",
		"service":    "sales-service",
		"go_version": runtime.Version(),
		"built_at":   startTime.Format(time.RFC3339),
	})
}

// Debug handles GET /debug
func (h *Handlers) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": gin.H{
			"enable_order_caching": h.config.Features.EnableOrderCaching,
			"enable_rate_caching":  h.config.Features.EnableRateCaching,
			"enable_order_events":  h.config.Features.EnableOrderEvents,
			"enable_notifications": h.config.Features.EnableNotifications,
		},
		"config": gin.H{
			"server_port":          h.config.Server.Port,
			"database_host":        h.config.Database.Host,
			"redis_host":           h.config.Redis.Host,
			"customer_service_url": h.config.CustomerService.BaseURL,
			"catalog_service_url":  h.config.CatalogService.BaseURL,
		},
	})
}
