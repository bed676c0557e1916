package pool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"go.uber.org/zap"
)

// StatsUseCase serves the read side: pool metadata and single pools.
type StatsUseCase struct {
	pools    repository.PoolReader
	cache    repository.StatsCache
	cacheTTL time.Duration
	logger   *zap.Logger

	// generation is bumped by Invalidate. A store read that straddles an
	// invalidation is not written back to the cache.
	generation atomic.Uint64
}

// NewStatsUseCase accepts a nil cache; stats are then read from the store every time.
func NewStatsUseCase(pools repository.PoolReader, cache repository.StatsCache, cacheTTL time.Duration, logger *zap.Logger) *StatsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsUseCase{
		pools:    pools,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetStats returns {totalPools, totalMembers, pools} without loading member lists.
func (uc *StatsUseCase) GetStats(ctx context.Context) (*domain.PoolStats, error) {
	if uc.cacheEnabled() {
		cached, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.Warn("stats cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	gen := uc.generation.Load()
	list, err := uc.pools.ListPoolStats(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.PoolStats{Pools: list}
	if stats.Pools == nil {
		stats.Pools = []domain.PoolStat{}
	}
	stats.TotalPools = len(stats.Pools)
	for _, p := range stats.Pools {
		stats.TotalMembers += p.Count
	}

	// Stats from another process's run can still be cached stale for up to cacheTTL.
	if uc.cacheEnabled() && uc.generation.Load() == gen {
		if err := uc.cache.Set(ctx, stats, uc.cacheTTL); err != nil {
			uc.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// GetPool returns one pool including its members.
func (uc *StatsUseCase) GetPool(ctx context.Context, poolKey string) (*domain.Pool, error) {
	if _, _, _, err := ParsePoolKey(poolKey); err != nil {
		return nil, err
	}
	return uc.pools.GetByKey(ctx, poolKey)
}

// Invalidate drops cached stats after pools were rewritten.
func (uc *StatsUseCase) Invalidate(ctx context.Context) error {
	uc.generation.Add(1)
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Invalidate(ctx)
}

func (uc *StatsUseCase) cacheEnabled() bool {
	return uc.cache != nil && uc.cacheTTL > 0
}
