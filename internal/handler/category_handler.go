package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/yourorg/marketdata-sync/internal/service"
	"github.com/yourorg/marketdata-sync/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultAssetLimit = 50
	maxAssetLimit     = 200
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// GetCategories handles listing every category with popular symbols
// GET /api/categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	response, err := h.categoryService.GetCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get categories", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetCategoryDetails handles retrieving a single category
// GET /api/categories/:key
func (h *CategoryHandler) GetCategoryDetails(c *gin.Context) {
	key := c.Param("key")

	view, err := h.categoryService.GetCategoryDetails(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			available, _ := h.categoryService.CategoryKeys(c.Request.Context())
			utils.SendErrorResponseWithDetails(c, http.StatusNotFound, "Category not found", gin.H{
				"available_categories": available,
				"received":             key,
			})
			return
		}
		h.logger.Error("Failed to get category details", zap.Error(err), zap.String("key", key))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve category")
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetCategoryAssets handles listing a category's assets on one exchange
// GET /api/category-assets
func (h *CategoryHandler) GetCategoryAssets(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	exchange := strings.ToUpper(strings.TrimSpace(c.Query("exchange")))
	searchTerm := strings.TrimSpace(c.Query("search"))

	if category == "" {
		utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, `Parameter "category" is required`, gin.H{
			"example": "/api/category-assets?category=crypto&exchange=BINANCE",
		})
		return
	}
	if exchange == "" {
		utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, `Parameter "exchange" is required`, gin.H{
			"example": "/api/category-assets?category=crypto&exchange=BINANCE",
		})
		return
	}

	limit := defaultAssetLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, "Invalid limit parameter", gin.H{
				"received": raw,
			})
			return
		}
		limit = parsed
	}
	if limit > maxAssetLimit {
		limit = maxAssetLimit
	}

	response, err := h.categoryService.GetCategoryAssets(c.Request.Context(), category, exchange, limit, searchTerm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			utils.SendErrorResponseWithDetails(c, http.StatusNotFound, "Category not found", gin.H{
				"received": category,
			})
		case errors.Is(err, service.ErrExchangeNotSupported):
			utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, "Exchange not supported for this category", gin.H{
				"category":            category,
				"supported_exchanges": h.categoryService.SupportedExchanges(c.Request.Context(), category),
				"received":            exchange,
			})
		default:
			h.logger.Error("Failed to get category assets",
				zap.Error(err),
				zap.String("category", category),
				zap.String("exchange", exchange))
			utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve assets")
		}
		return
	}

	c.JSON(http.StatusOK, response)
}
