package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/google/uuid"
)

// AdvisoryCache stores serialized adjustments.
type AdvisoryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedAdvisor memoizes adjustments per task revision, so an unchanged
// task is never sent upstream twice within the TTL.
type CachedAdvisor struct {
	inner  AdvisoryScorer
	cache  AdvisoryCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedAdvisor wraps inner with cache.
func NewCachedAdvisor(inner AdvisoryScorer, cache AdvisoryCache, ttl time.Duration, logger *slog.Logger) *CachedAdvisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedAdvisor{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

// AdvisoryCacheKey is the cache key for a task at its current revision.
func AdvisoryCacheKey(t *task.Task) string {
	return fmt.Sprintf("advisory:%s:%d", t.ID(), t.Revision())
}

// GetAdjustments implements AdvisoryScorer. Cache errors degrade to misses.
func (c *CachedAdvisor) GetAdjustments(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]Adjustment, error) {
	out := make(map[uuid.UUID]Adjustment, len(tasks))
	var misses []*task.Task

	for _, t := range tasks {
		raw, ok, err := c.cache.Get(ctx, AdvisoryCacheKey(t))
		if err != nil {
			c.logger.Debug("advisory cache read failed", "task_id", t.ID(), "error", err)
		}
		if !ok || err != nil {
			misses = append(misses, t)
			continue
		}
		var adj Adjustment
		if err := json.Unmarshal(raw, &adj); err != nil {
			misses = append(misses, t)
			continue
		}
		out[t.ID()] = adj
	}

	if len(misses) == 0 {
		return out, nil
	}

	fresh, err := c.inner.GetAdjustments(ctx, misses)
	if err != nil {
		if len(out) > 0 {
			c.logger.Warn("advisory refresh failed, serving cached adjustments", "cached", len(out), "error", err)
			return out, nil
		}
		return nil, err
	}

	for _, t := range misses {
		adj, ok := fresh[t.ID()]
		if !ok {
			continue
		}
		out[t.ID()] = adj
		raw, err := json.Marshal(adj)
		if err != nil {
			continue
		}
		if err := c.cache.Set(ctx, AdvisoryCacheKey(t), raw, c.ttl); err != nil {
			c.logger.Debug("advisory cache write failed", "task_id", t.ID(), "error", err)
		}
	}

	return out, nil
}
