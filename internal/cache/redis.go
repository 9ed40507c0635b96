// Package cache provides a Redis read-through cache for monthly summary
// responses. Stored runs are immutable, so entries only ever expire.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"comfort-platform/internal/models"
	"comfort-platform/pkg/logging"
	"comfort-platform/pkg/metrics"
)

// SummaryCache caches monthly summary rows per analysis run.
type SummaryCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSummaryCache connects to Redis and verifies the connection.
func NewSummaryCache(addr string, ttl time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*SummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     20,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info(context.Background(), "[CACHE_INIT] Redis summary cache connected", logging.Fields{
		"addr": addr,
		"ttl":  ttl.String(),
	})

	return &SummaryCache{
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: metricsCollector,
	}, nil
}

func monthlyKey(runID uuid.UUID) string {
	return fmt.Sprintf("comfort:monthly:%s", runID)
}

// GetMonthly returns the cached monthly rows for a run, if present.
func (c *SummaryCache) GetMonthly(ctx context.Context, runID uuid.UUID) ([]*models.MonthlySummary, bool) {
	data, err := c.client.Get(ctx, monthlyKey(runID)).Bytes()
	if err == redis.Nil {
		c.metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	if err != nil {
		// Cache failures degrade to a repository read.
		c.metrics.CacheMissesTotal.Inc()
		c.logger.Warn(ctx, "[CACHE_GET_ERROR] Redis read failed", logging.Fields{
			"run_id": runID.String(),
			"error":  err.Error(),
		})
		return nil, false
	}

	var months []*models.MonthlySummary
	if err := json.Unmarshal(data, &months); err != nil {
		c.metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	c.metrics.CacheHitsTotal.Inc()
	return months, true
}

// SetMonthly stores the monthly rows for a run.
func (c *SummaryCache) SetMonthly(ctx context.Context, runID uuid.UUID, months []*models.MonthlySummary) {
	data, err := json.Marshal(months)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, monthlyKey(runID), data, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "[CACHE_SET_ERROR] Redis write failed", logging.Fields{
			"run_id": runID.String(),
			"error":  err.Error(),
		})
	}
}

// Close releases the Redis connection.
func (c *SummaryCache) Close() error {
	return c.client.Close()
}
