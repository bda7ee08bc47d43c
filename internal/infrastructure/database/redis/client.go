// Package redis provides the Redis connection and the health score cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/complyhq/compliance-engine/internal/config"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
)

// NewClient opens a Redis connection and verifies it with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	logger.Info("connected to redis", logging.String("addr", cfg.Addr))
	return client, nil
}

// jitterTTL spreads expirations by up to 10% so a burst of cached reports
// does not expire in the same instant.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(ttl/10+1))
	return ttl + jitter
}
