package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/errors"
	"github.com/paperkart/paperkart-sales-service/internal/service"
)

// Handlers holds all HTTP handlers for the sales service.
type Handlers struct {
	orderService *service.SalesOrderService
	config       *config.Config
	logger       *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(orderService *service.SalesOrderService, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		orderService: orderService,
		config:       cfg,
		logger:       logger.Named("handlers"),
	}
}

func handleError(c *gin.Context, err error) {
	if err == errors.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if validationErr, ok := err.(*errors.ValidationError); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
