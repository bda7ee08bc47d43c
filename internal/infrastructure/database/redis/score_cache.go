package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/complyhq/compliance-engine/internal/domain/health"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

const scoreKeyPrefix = "comply:health:entity:"

// ScoreCache caches computed entity health reports with a short TTL.  Cache
// failures degrade to recomputation: every error path reads as a miss and
// writes are fire-and-forget.
type ScoreCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewScoreCache wires a cache over an established Redis client.
func NewScoreCache(rdb *redis.Client, ttl time.Duration, logger logging.Logger) *ScoreCache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ScoreCache{rdb: rdb, ttl: ttl, logger: logger.Named("scorecache")}
}

func scoreKey(entityID common.ID) string {
	return scoreKeyPrefix + entityID.String()
}

// GetEntityReport returns the cached report for an entity, if present.
func (c *ScoreCache) GetEntityReport(ctx context.Context, entityID common.ID) (*health.EntityReport, bool) {
	raw, err := c.rdb.Get(ctx, scoreKey(entityID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed, treating as miss",
			logging.String("entity_id", entityID.String()),
			logging.Err(err))
		return nil, false
	}

	var report health.EntityReport
	if err := json.Unmarshal(raw, &report); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss",
			logging.String("entity_id", entityID.String()),
			logging.Err(err))
		return nil, false
	}
	return &report, true
}

// SetEntityReport stores a report under a jittered TTL.
func (c *ScoreCache) SetEntityReport(ctx context.Context, report *health.EntityReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("cache encode failed", logging.Err(err))
		return
	}
	if err := c.rdb.Set(ctx, scoreKey(report.EntityID), raw, jitterTTL(c.ttl)).Err(); err != nil {
		c.logger.Warn("cache write failed",
			logging.String("entity_id", report.EntityID.String()),
			logging.Err(err))
	}
}

// Invalidate drops the cached report for an entity.
func (c *ScoreCache) Invalidate(ctx context.Context, entityID common.ID) {
	if err := c.rdb.Del(ctx, scoreKey(entityID)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed",
			logging.String("entity_id", entityID.String()),
			logging.Err(err))
	}
}
