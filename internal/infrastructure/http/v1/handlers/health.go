package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartshop/internal/core/clock"
	"smartshop/internal/infrastructure/storage/postgres"
)

// Database is the part of the pool the health checks need.
type Database interface {
	Ping(ctx context.Context) error
	Stats() postgres.PoolStats
}

// HealthHandler provides status and health check endpoints.
type HealthHandler struct {
	db      Database
	clock   clock.Clock
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Database, clk clock.Clock, version string) *HealthHandler {
	return &HealthHandler{db: db, clock: clk, version: version, started: clk.Now()}
}

// Status handles GET /api/status. It is public and always answers 200 while
// the process is serving; the database state is reported in the body.
func (h *HealthHandler) Status(c *gin.Context) {
	now := h.clock.Now()
	database := gin.H{"status": "Healthy"}
	if err := h.ping(c.Request.Context()); err != nil {
		database = gin.H{"status": "Unhealthy", "error": err.Error()}
	} else {
		database["pool"] = h.db.Stats()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "Healthy",
		"timestamp": now,
		"version":   h.version,
		"uptime":    now.Sub(h.started).Round(time.Second).String(),
		"database":  database,
	})
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Ping(ctx)
}
