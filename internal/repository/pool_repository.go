package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
)

// PoolWriter persists pools. One call is one atomic batch: either every pool
// in it is fully replaced or none is.
type PoolWriter interface {
	ReplacePools(ctx context.Context, pools []*domain.Pool) error
}

type PoolReader interface {
	// ListPoolStats projects key, count and updatedAt only, ordered by key.
	ListPoolStats(ctx context.Context) ([]domain.PoolStat, error)
	GetByKey(ctx context.Context, poolKey string) (*domain.Pool, error)
}

type PoolRepository interface {
	PoolWriter
	PoolReader
}

// StatsCache holds the last computed stats response.
type StatsCache interface {
	Get(ctx context.Context) (*domain.PoolStats, bool, error)
	Set(ctx context.Context, stats *domain.PoolStats, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
