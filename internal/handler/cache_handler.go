package handler

import (
	"net/http"

	"github.com/yourorg/marketdata-sync/internal/cache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheHandler handles cache inspection HTTP requests
type CacheHandler struct {
	cache  *cache.ResponseCache
	logger *zap.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(responseCache *cache.ResponseCache, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		cache:  responseCache,
		logger: logger,
	}
}

// GetStatus handles reporting cache occupancy
// GET /api/cache/status
func (h *CacheHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Status())
}

// Clear handles dropping every cached response
// GET /api/cache/clear
func (h *CacheHandler) Clear(c *gin.Context) {
	cleared := h.cache.Clear()
	h.logger.Info("Response cache cleared", zap.Int("cleared_items", cleared))

	c.JSON(http.StatusOK, gin.H{
		"message":       "Cache cleared successfully",
		"cleared_items": cleared,
		"current_size":  h.cache.Len(),
	})
}
