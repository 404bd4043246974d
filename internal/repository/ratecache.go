package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/metrics"
)

const (
	rateKeyPrefix  = "benchmark_rate:"
	defaultRateTTL = 10 * time.Minute
)

// RedisRateCache caches customer benchmark rates so quoting does not call
// the customer service on every keystroke-driven recompute.
type RedisRateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRateCache creates a new Redis-based benchmark rate cache.
func NewRedisRateCache(cfg config.RedisConfig, logger *zap.Logger) *RedisRateCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.RateTTL
	if ttl == 0 {
		ttl = defaultRateTTL
	}

	return &RedisRateCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("rate-cache"),
	}
}

// Get retrieves a cached benchmark rate for a customer.
func (c *RedisRateCache) Get(ctx context.Context, customerID string) (float64, bool, error) {
	val, err := c.client.Get(ctx, rateKeyPrefix+customerID).Result()
	if err == redis.Nil {
		metrics.RateCacheLookups.WithLabelValues("miss").Inc()
		return 0, false, nil
	}
	if err != nil {
		c.logger.Error("Rate cache get error",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return 0, false, err
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		// Corrupt entry, drop it and treat as a miss.
		c.client.Del(ctx, rateKeyPrefix+customerID)
		metrics.RateCacheLookups.WithLabelValues("miss").Inc()
		return 0, false, nil
	}

	metrics.RateCacheLookups.WithLabelValues("hit").Inc()
	return rate, true, nil
}

// Set caches a customer's benchmark rate.
func (c *RedisRateCache) Set(ctx context.Context, customerID string, rate float64) error {
	val := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := c.client.Set(ctx, rateKeyPrefix+customerID, val, c.ttl).Err(); err != nil {
		c.logger.Error("Rate cache set error",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Invalidate drops a customer's cached rate, typically on a
// customer.rate_updated event.
func (c *RedisRateCache) Invalidate(ctx context.Context, customerID string) error {
	if err := c.client.Del(ctx, rateKeyPrefix+customerID).Err(); err != nil {
		c.logger.Error("Rate cache invalidate error",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return err
	}
	c.logger.Info("Benchmark rate invalidated", zap.String("customer_id", customerID))
	return nil
}
