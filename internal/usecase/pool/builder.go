package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"go.uber.org/zap"
)

const DefaultScanPageSize = 500

// Clock returns the current time. Eligibility windows and updatedAt use it.
type Clock func() time.Time

type BuilderConfig struct {
	PageSize    int
	MaxPoolSize int
}

// Builder runs one full scan → filter → bucket → write pass.
type Builder struct {
	reader  repository.ProfileReader
	writer  *BulkWriter
	clock   Clock
	logger  *zap.Logger
	metrics Metrics
	cfg     BuilderConfig
}

func NewBuilder(
	reader repository.ProfileReader,
	writer *BulkWriter,
	clock Clock,
	logger *zap.Logger,
	metrics Metrics,
	cfg BuilderConfig,
) *Builder {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultScanPageSize
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = domain.MaxPoolSize
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Builder{
		reader:  reader,
		writer:  writer,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Build scans every profile once and replaces each non-empty pool.
// On a write failure the partial result is returned together with the error.
func (b *Builder) Build(ctx context.Context) (*domain.BuildResult, error) {
	acc := NewAccumulator(b.cfg.MaxPoolSize)
	result := &domain.BuildResult{}

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return result, runAborted(err)
		}

		page, err := b.reader.ScanPage(ctx, cursor, b.cfg.PageSize)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, runAborted(ctxErr)
			}
			return result, fmt.Errorf("scan profiles after %q: %w", cursor, err)
		}
		if len(page) == 0 {
			break
		}

		result.Scanned += len(page)
		cursor = page[len(page)-1].UserID
		b.metrics.ProfilesScanned(len(page))

		now := b.clock()
		for _, rec := range page {
			b.place(acc, rec, now)
		}

		b.logger.Info("pool scan progress",
			zap.Int("scanned", result.Scanned),
			zap.Int("pools", acc.Len()),
		)

		if len(page) < b.cfg.PageSize {
			break
		}
	}

	pools, err := acc.Pools(b.clock())
	if err != nil {
		return result, err
	}
	result.PoolCount = len(pools)
	result.MemberCount = acc.MemberCount()

	if _, err := b.writer.Write(ctx, pools); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, runAborted(ctxErr)
		}
		return result, err
	}

	b.logger.Info("pool build complete",
		zap.Int("pools", result.PoolCount),
		zap.Int("members", result.MemberCount),
		zap.Int("scanned", result.Scanned),
	)
	return result, nil
}

func (b *Builder) place(acc *Accumulator, rec *domain.ProfileRecord, now time.Time) {
	cand, reason := Evaluate(rec, now)
	if cand == nil {
		b.metrics.Excluded(string(reason))
		return
	}
	bucket, ok := FindAgeBucket(cand.Member.Age)
	if !ok {
		b.metrics.Excluded(string(ExcludedNoBucket))
		return
	}
	if acc.Add(PoolKey(cand.Country, cand.Gender, bucket), cand.Member) {
		b.metrics.MemberAccepted()
	} else {
		b.metrics.MemberDropped()
	}
}

func runAborted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrRunTimedOut, err)
	}
	return err
}
