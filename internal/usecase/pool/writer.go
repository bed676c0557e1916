package pool

import (
	"context"
	"fmt"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"go.uber.org/zap"
)

// DefaultWriteChunkSize leaves headroom under a 500-operation batch limit,
// since a pool write may cost more than one operation.
const DefaultWriteChunkSize = 250

// BulkWriter writes pools in chunks, each chunk committed as one atomic batch.
// A failed chunk does not undo chunks that were already committed.
type BulkWriter struct {
	store     repository.PoolWriter
	chunkSize int
	logger    *zap.Logger
	metrics   Metrics
}

func NewBulkWriter(store repository.PoolWriter, chunkSize int, logger *zap.Logger, metrics Metrics) *BulkWriter {
	if chunkSize <= 0 {
		chunkSize = DefaultWriteChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &BulkWriter{
		store:     store,
		chunkSize: chunkSize,
		logger:    logger,
		metrics:   metrics,
	}
}

// Write returns the number of pools committed before any failure.
func (w *BulkWriter) Write(ctx context.Context, pools []*domain.Pool) (int, error) {
	chunks := chunk(pools, w.chunkSize)
	written := 0
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := w.store.ReplacePools(ctx, c); err != nil {
			w.logger.Error("pool chunk commit failed",
				zap.Int("chunk", i+1),
				zap.Int("chunks", len(chunks)),
				zap.Int("committed_pools", written),
				zap.Error(err),
			)
			return written, fmt.Errorf("commit chunk %d/%d: %w", i+1, len(chunks), err)
		}
		written += len(c)
		w.metrics.PoolsWritten(len(c))
	}
	return written, nil
}

func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
