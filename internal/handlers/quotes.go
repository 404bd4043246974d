package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paperkart/paperkart-sales-service/internal/models"
	"github.com/paperkart/paperkart-sales-service/internal/pricing"
)

// QuoteOrder handles POST /api/v1/quotes. It prices a draft order without
// persisting anything, so the order entry screen can re-quote on every edit.
func (h *Handlers) QuoteOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	quote, err := h.orderService.QuoteOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// DeriveRate handles GET /api/v1/quotes/rate. It answers the single-field
// question "what does this width cost per roll" without a full quote. The
// override parameter takes the raw form-field string: empty or garbage means
// derive, an explicit "0" means free of charge.
func (h *Handlers) DeriveRate(c *gin.Context) {
	benchmarkRate, err := strconv.ParseFloat(c.Query("benchmark_rate"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "benchmark_rate must be a number"})
		return
	}

	width, err := strconv.ParseFloat(c.Query("width"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "width must be a number"})
		return
	}

	derived := pricing.DeriveRate(benchmarkRate, width)
	effective := derived

	override := pricing.ParseOverrideRate(c.Query("override"))
	if override != nil {
		effective = *override
	}

	c.JSON(http.StatusOK, gin.H{
		"benchmark_rate_44": benchmarkRate,
		"width_inches":      width,
		"derived_rate":      derived,
		"effective_rate":    effective,
		"overridden":        override != nil,
	})
}
