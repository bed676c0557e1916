package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"github.com/redis/go-redis/v9"
)

const statsKey = "pools:stats"

type statsCache struct {
	client *redis.Client
	key    string
}

// NewStatsCache stores the stats response as JSON under one key.
func NewStatsCache(client *redis.Client) repository.StatsCache {
	return &statsCache{client: client, key: statsKey}
}

func (c *statsCache) Get(ctx context.Context) (*domain.PoolStats, bool, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stats domain.PoolStats
	if err := json.Unmarshal(val, &stats); err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (c *statsCache) Set(ctx context.Context, stats *domain.PoolStats, ttl time.Duration) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, ttl).Err()
}

func (c *statsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
