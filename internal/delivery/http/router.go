package http

import (
	"net/http"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/delivery/http/handler"
	"github.com/gdugdh24/mpit2026-pools/internal/delivery/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	poolHandler    *handler.PoolHandler
	authMiddleware *middleware.AuthMiddleware
	metrics        http.Handler
	allowedOrigins []string
	logger         *zap.Logger
}

// NewRouter wires the pool API. metrics may be nil to disable /metrics.
func NewRouter(
	poolHandler *handler.PoolHandler,
	authMiddleware *middleware.AuthMiddleware,
	metrics http.Handler,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		poolHandler:    poolHandler,
		authMiddleware: authMiddleware,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(r.logger))
	router.Use(cors.New(r.corsConfig()))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics))
	}

	v1 := router.Group("/api/v1")
	{
		pools := v1.Group("/pools")
		pools.Use(r.authMiddleware.RequireAuth())
		{
			pools.POST("/rebuild", r.poolHandler.Rebuild)
			pools.GET("/stats", r.poolHandler.Stats)
			pools.GET("/status", r.poolHandler.Status)
			pools.GET("/:poolKey", r.poolHandler.GetPool)
		}
	}

	return router
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	if len(r.allowedOrigins) == 0 || (len(r.allowedOrigins) == 1 && r.allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.allowedOrigins
	}
	return cfg
}
