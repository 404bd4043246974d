package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersCreated counts sales orders persisted, labelled by outcome.
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_orders_created_total",
		Help: "Number of sales order creation attempts.",
	}, []string{"result"})

	// PricingRequests counts invocations of the pricing engine through the
	// quote and create paths.
	PricingRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_pricing_requests_total",
		Help: "Number of pricing computations requested.",
	})

	// RateCacheLookups counts benchmark-rate cache hits and misses.
	RateCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_rate_cache_lookups_total",
		Help: "Benchmark rate cache lookups by outcome.",
	}, []string{"outcome"})

	// EventsPublished counts kafka events published by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_events_published_total",
		Help: "Order events published to kafka.",
	}, []string{"type", "result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the prometheus scrape endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
