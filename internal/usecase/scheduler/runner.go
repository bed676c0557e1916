package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultInterval = 10 * time.Minute
	DefaultTimeout  = 9 * time.Minute

	invalidateTimeout = 5 * time.Second
)

// PoolBuilder runs one full pool build.
type PoolBuilder interface {
	Build(ctx context.Context) (*domain.BuildResult, error)
}

// StatsInvalidator drops cached stats once pools have been rewritten.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RunMetrics observes run lifecycle events.
type RunMetrics interface {
	RunStarted(trigger string)
	RunFinished(trigger, outcome string, duration time.Duration, finishedAt time.Time)
}

type nopRunMetrics struct{}

func (nopRunMetrics) RunStarted(string)                                    {}
func (nopRunMetrics) RunFinished(string, string, time.Duration, time.Time) {}

type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Runner executes pool builds on a ticker and on demand. Runs are not
// serialized: a manual run may overlap a scheduled one and the later write
// of each pool wins.
type Runner struct {
	builder     PoolBuilder
	invalidator StatsInvalidator
	metrics     RunMetrics
	logger      *zap.Logger
	clock       func() time.Time
	newRunID    func() string
	cfg         Config

	mu       sync.Mutex
	inFlight int
	last     *domain.RunRecord
}

type Option func(*Runner)

// WithClock overrides time.Now for run timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithRunIDs overrides the uuid-based run identifiers.
func WithRunIDs(gen func() string) Option {
	return func(r *Runner) { r.newRunID = gen }
}

func NewRunner(builder PoolBuilder, invalidator StatsInvalidator, metrics RunMetrics, logger *zap.Logger, cfg Config, opts ...Option) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if metrics == nil {
		metrics = nopRunMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		builder:     builder,
		invalidator: invalidator,
		metrics:     metrics,
		logger:      logger,
		clock:       time.Now,
		newRunID:    func() string { return uuid.New().String() },
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one build bounded by the configured timeout. The returned
// record is populated even when err is non-nil.
func (r *Runner) Run(ctx context.Context, trigger domain.Trigger) (*domain.RunRecord, error) {
	rec := &domain.RunRecord{
		RunID:     r.newRunID(),
		Trigger:   trigger,
		State:     domain.RunRunning,
		StartedAt: r.clock(),
	}
	r.begin()
	r.metrics.RunStarted(string(trigger))

	log := r.logger.With(zap.String("run_id", rec.RunID), zap.String("trigger", string(trigger)))
	log.Info("pool build started", zap.Duration("timeout", r.cfg.Timeout))

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	res, err := r.builder.Build(runCtx)
	if res != nil {
		rec.PoolCount = res.PoolCount
		rec.MemberCount = res.MemberCount
		rec.Scanned = res.Scanned
	}

	finished := r.clock()
	rec.FinishedAt = &finished
	duration := finished.Sub(rec.StartedAt)

	if err != nil {
		rec.State = domain.RunFailed
		rec.Error = err.Error()
		fields := []zap.Field{
			zap.Error(err),
			zap.Int("scanned", rec.Scanned),
			zap.Duration("duration", duration),
		}
		if errors.Is(err, domain.ErrRunTimedOut) {
			log.Error("pool build timed out", fields...)
		} else {
			log.Error("pool build failed", fields...)
		}
	} else {
		rec.State = domain.RunSucceeded
		log.Info("pool build finished",
			zap.Int("pools", rec.PoolCount),
			zap.Int("members", rec.MemberCount),
			zap.Int("scanned", rec.Scanned),
			zap.Duration("duration", duration),
		)
	}

	// Some pools may have been written even on failure.
	r.invalidate(ctx, log)

	r.metrics.RunFinished(string(trigger), string(rec.State), duration, finished)
	r.end(rec)
	return rec, err
}

// Start runs a build every interval until ctx is done. It blocks.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("pool scheduler started", zap.Duration("interval", r.cfg.Interval))
	for {
		select {
		case <-ticker.C:
			// Errors are already logged by Run; the next tick is the retry.
			_, _ = r.Run(ctx, domain.TriggerScheduled)
		case <-ctx.Done():
			r.logger.Info("pool scheduler stopped")
			return
		}
	}
}

// Status reports the current state and the most recently finished run.
// A finished run's outcome lives in LastRun; the runner itself is idle again.
func (r *Runner) Status() domain.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := domain.RunStatus{State: domain.RunIdle, InFlight: r.inFlight}
	if r.last != nil {
		last := *r.last
		status.LastRun = &last
	}
	if r.inFlight > 0 {
		status.State = domain.RunRunning
	}
	return status
}

func (r *Runner) invalidate(ctx context.Context, log *zap.Logger) {
	if r.invalidator == nil {
		return
	}
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := r.invalidator.Invalidate(ictx); err != nil {
		log.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (r *Runner) begin() {
	r.mu.Lock()
	r.inFlight++
	r.mu.Unlock()
}

func (r *Runner) end(rec *domain.RunRecord) {
	r.mu.Lock()
	r.inFlight--
	r.last = rec
	r.mu.Unlock()
}
