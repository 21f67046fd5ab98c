// Package cache keeps the most recent sample of each device in Redis so the
// live dashboard can answer latest-value queries without scanning the store.
// All methods are safe on a nil cache, which is how a disabled cache is
// represented.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
)

const keyPrefix = "sensorbridge:latest:"

// SampleCache is a write-through cache of the latest sample per device
type SampleCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// New connects to Redis if the cache is enabled. A disabled cache yields a
// nil *SampleCache, which all methods tolerate.
func New(ctx context.Context, cfg config.CacheConfig, logger *logging.Logger) (*SampleCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Sample cache enabled", "addr", cfg.Addr)
	return &SampleCache{
		rdb:    rdb,
		ttl:    cfg.TTL,
		logger: logger.With("component", "cache"),
	}, nil
}

// SetSample stores the sample as the device's latest value
func (c *SampleCache) SetSample(ctx context.Context, sample *models.Sample) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+sample.DeviceID, data, c.ttl).Err()
}

// Latest returns the cached latest sample of a device, or nil on a miss
func (c *SampleCache) Latest(ctx context.Context, deviceID string) (*models.Sample, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, keyPrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// All returns the cached latest samples of every device
func (c *SampleCache) All(ctx context.Context) ([]*models.Sample, error) {
	if c == nil {
		return nil, nil
	}

	var out []*models.Sample
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := c.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, err
		}
		var s models.Sample
		if err := json.Unmarshal(data, &s); err != nil {
			c.logger.Warn("Dropping undecodable cache entry", "key", iter.Val(), "error", err)
			continue
		}
		out = append(out, &s)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the Redis connection
func (c *SampleCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
