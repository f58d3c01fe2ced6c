package handler

import (
	"net/http"
	"time"

	"github.com/yourorg/marketdata-sync/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const serviceVersion = "1.0.0"

// HealthHandler reports service liveness for load balancers
type HealthHandler struct {
	db          *sqlx.DB
	cache       *cache.ResponseCache
	connections func() int
	startTime   time.Time
	logger      *zap.Logger
}

// NewHealthHandler creates a new health handler. connections reports the
// number of live WebSocket clients and may be nil.
func NewHealthHandler(db *sqlx.DB, responseCache *cache.ResponseCache, connections func() int, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		cache:       responseCache,
		connections: connections,
		startTime:   time.Now(),
		logger:      logger,
	}
}

// GetHealth handles the health probe. Database failure degrades the
// status to unhealthy with a 503.
// GET /api/health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	dbStatus := "healthy"
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		h.logger.Warn("Health check database ping failed", zap.Error(err))
		dbStatus = "unhealthy"
	}

	active := 0
	if h.connections != nil {
		active = h.connections()
	}

	status := "healthy"
	code := http.StatusOK
	if dbStatus != "healthy" {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":             status,
		"timestamp":          time.Now().UTC(),
		"version":            serviceVersion,
		"database":           dbStatus,
		"active_connections": active,
		"cache_size":         h.cache.Len(),
		"uptime_seconds":     time.Since(h.startTime).Seconds(),
	})
}
