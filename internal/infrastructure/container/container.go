package container

import (
	"context"
	"fmt"

	"github.com/gdugdh24/mpit2026-pools/internal/config"
	delivery "github.com/gdugdh24/mpit2026-pools/internal/delivery/http"
	"github.com/gdugdh24/mpit2026-pools/internal/delivery/http/handler"
	"github.com/gdugdh24/mpit2026-pools/internal/delivery/http/middleware"
	"github.com/gdugdh24/mpit2026-pools/internal/infrastructure/database"
	"github.com/gdugdh24/mpit2026-pools/internal/infrastructure/metrics"
	"github.com/gdugdh24/mpit2026-pools/internal/infrastructure/server"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"github.com/gdugdh24/mpit2026-pools/internal/repository/cache"
	"github.com/gdugdh24/mpit2026-pools/internal/repository/mongodb"
	"github.com/gdugdh24/mpit2026-pools/internal/repository/postgres"
	"github.com/gdugdh24/mpit2026-pools/internal/usecase/auth"
	"github.com/gdugdh24/mpit2026-pools/internal/usecase/pool"
	"github.com/gdugdh24/mpit2026-pools/internal/usecase/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Mongo  *mongo.Client
	Redis  *redis.Client
	Runner *scheduler.Runner
	Stats  *pool.StatsUseCase
	Server *server.Server

	schedulerDone chan struct{}
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	profiles, pools, err := c.initStores()
	if err != nil {
		c.Close()
		return nil, err
	}

	var statsCache repository.StatsCache
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = redisClient
		statsCache = cache.NewStatsCache(redisClient)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Initialize use cases
	writer := pool.NewBulkWriter(pools, cfg.Pools.WriteChunkSize, logger, collector)
	builder := pool.NewBuilder(profiles, writer, nil, logger, collector, pool.BuilderConfig{
		PageSize:    cfg.Pools.ScanPageSize,
		MaxPoolSize: cfg.Pools.MaxPoolSize,
	})
	c.Stats = pool.NewStatsUseCase(pools, statsCache, cfg.Pools.StatsCacheTTL, logger)
	c.Runner = scheduler.NewRunner(builder, c.Stats, collector, logger, scheduler.Config{
		Interval: cfg.Pools.ScheduleInterval,
		Timeout:  cfg.Pools.RunTimeout,
	})

	// Initialize handlers
	poolHandler := handler.NewPoolHandler(c.Runner, c.Stats, logger)
	authMiddleware := middleware.NewAuthMiddleware(auth.NewTokenVerifier(cfg.JWT.AccessSecret))

	var metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	if !cfg.Metrics.Enabled {
		metricsHandler = nil
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := delivery.NewRouter(poolHandler, authMiddleware, metricsHandler, cfg.CORS.AllowedOrigins, logger)
	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)

	return c, nil
}

func (c *Container) initStores() (repository.ProfileReader, repository.PoolRepository, error) {
	switch c.Config.Pools.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.NewMongoClient(&c.Config.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		c.Mongo = client
		return mongodb.NewProfileRepository(db), mongodb.NewPoolRepository(client, db), nil
	default:
		db, err := database.NewPostgresDB(&c.Config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return postgres.NewProfileRepository(db), postgres.NewPoolRepository(db), nil
	}
}

// StartScheduler runs the pool scheduler in the background until ctx is done.
func (c *Container) StartScheduler(ctx context.Context) {
	done := make(chan struct{})
	c.schedulerDone = done
	go func() {
		defer close(done)
		c.Runner.Start(ctx)
	}()
}

// Close closes all connections. When the scheduler was started, Close first
// waits for it to return, so its context must already be cancelled.
func (c *Container) Close() error {
	if c.schedulerDone != nil {
		<-c.schedulerDone
	}

	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", zap.Error(err))
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(context.Background()); err != nil {
			firstErr = fmt.Errorf("failed to disconnect mongo: %w", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
	}
	return firstErr
}
