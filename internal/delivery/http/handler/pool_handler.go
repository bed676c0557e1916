package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PoolRunner interface {
	Run(ctx context.Context, trigger domain.Trigger) (*domain.RunRecord, error)
	Status() domain.RunStatus
}

type PoolStatsReader interface {
	GetStats(ctx context.Context) (*domain.PoolStats, error)
	GetPool(ctx context.Context, poolKey string) (*domain.Pool, error)
}

type PoolHandler struct {
	runner PoolRunner
	stats  PoolStatsReader
	logger *zap.Logger
}

func NewPoolHandler(runner PoolRunner, stats PoolStatsReader, logger *zap.Logger) *PoolHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolHandler{
		runner: runner,
		stats:  stats,
		logger: logger,
	}
}

// RebuildResponse is returned by a successful manual rebuild
type RebuildResponse struct {
	Success     bool `json:"success"`
	PoolCount   int  `json:"poolCount"`
	MemberCount int  `json:"memberCount"`
}

// Rebuild runs one pool build synchronously
// @Summary Rebuild candidate pools
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RebuildResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /pools/rebuild [post]
func (h *PoolHandler) Rebuild(c *gin.Context) {
	// A client disconnect must not abort a run that is already writing pools.
	ctx := context.WithoutCancel(c.Request.Context())

	rec, err := h.runner.Run(ctx, domain.TriggerManual)
	if err != nil {
		status := http.StatusInternalServerError
		message := "pool rebuild failed"
		if errors.Is(err, domain.ErrRunTimedOut) {
			status = http.StatusGatewayTimeout
			message = "pool rebuild timed out"
		}
		_ = c.Error(err)
		c.JSON(status, ErrorResponse{Error: message})
		return
	}

	c.JSON(http.StatusOK, RebuildResponse{
		Success:     true,
		PoolCount:   rec.PoolCount,
		MemberCount: rec.MemberCount,
	})
}

// Stats returns metadata for every pool
// @Summary Pool statistics
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.PoolStats
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /pools/stats [get]
func (h *PoolHandler) Stats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load pool stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Status reports the state of the pool builder
// @Summary Pool builder status
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.RunStatus
// @Failure 401 {object} ErrorResponse
// @Router /pools/status [get]
func (h *PoolHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Status())
}

// GetPool returns one pool with its members
// @Summary Get candidate pool
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Param poolKey path string true "Pool key, e.g. DE_Female_25-34"
// @Success 200 {object} domain.Pool
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /pools/{poolKey} [get]
func (h *PoolHandler) GetPool(c *gin.Context) {
	pool, err := h.stats.GetPool(c.Request.Context(), c.Param("poolKey"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPoolKey):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid pool key"})
		case errors.Is(err, domain.ErrPoolNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "pool not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load pool"})
		}
		return
	}
	c.JSON(http.StatusOK, pool)
}
