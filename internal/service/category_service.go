package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/repository"

	"go.uber.org/zap"
)

// maximum popular symbols listed per category
const popularSymbolsPerCategory = 10

var (
	// ErrCategoryNotFound signals an unknown category key
	ErrCategoryNotFound = errors.New("category not found")
	// ErrExchangeNotSupported signals an exchange outside a category's list
	ErrExchangeNotSupported = errors.New("exchange not supported for this category")
)

// CategoryService handles category listing and per-category asset queries
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	assetRepo    *repository.AssetRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo *repository.CategoryRepository, assetRepo *repository.AssetRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		assetRepo:    assetRepo,
		logger:       logger,
	}
}

// GetCategories builds the full categories listing with popular symbols
// and aggregate statistics
func (s *CategoryService) GetCategories(ctx context.Context) (*model.CategoriesResponse, error) {
	categories, err := s.categoryRepo.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}

	views := make(map[string]*model.CategoryView, len(categories))
	exchanges := make(map[string]bool)
	totalSymbols := 0

	for i := range categories {
		cat := &categories[i]

		assets, err := s.assetRepo.GetAssetsByCategory(ctx, cat.Key)
		if err != nil {
			return nil, err
		}
		popular := make([]string, 0, popularSymbolsPerCategory)
		for _, asset := range assets {
			if len(popular) >= popularSymbolsPerCategory {
				break
			}
			popular = append(popular, asset.Symbol)
		}
		totalSymbols += len(popular)

		for _, ex := range cat.Exchanges {
			exchanges[ex] = true
		}

		views[cat.Key] = &model.CategoryView{
			Name:           cat.Name,
			Description:    cat.Description,
			Icon:           cat.Icon,
			Exchanges:      cat.Exchanges,
			Timeframes:     cat.Timeframes,
			PopularSymbols: popular,
		}
	}

	return &model.CategoriesResponse{
		Categories: views,
		Statistics: model.CategoryStatistics{
			TotalCategories:     len(views),
			TotalExchanges:      len(exchanges),
			TotalPopularSymbols: totalSymbols,
			SupportedTimeframes: model.ValidTimeframes,
		},
		GeneratedAt: time.Now().UTC(),
		Timezone:    "UTC",
		Source:      "database",
	}, nil
}

// GetCategoryDetails returns one category's view with symbol and
// exchange totals filled in
func (s *CategoryService) GetCategoryDetails(ctx context.Context, key string) (*model.CategoryView, error) {
	all, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	view, ok := all.Categories[key]
	if !ok {
		return nil, ErrCategoryNotFound
	}

	view.TotalSymbols = len(view.PopularSymbols)
	view.TotalExchanges = len(view.Exchanges)
	return view, nil
}

// CategoryKeys returns the known category keys, for not-found responses
func (s *CategoryService) CategoryKeys(ctx context.Context) ([]string, error) {
	categories, err := s.categoryRepo.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(categories))
	for _, cat := range categories {
		keys = append(keys, cat.Key)
	}
	return keys, nil
}

// GetCategoryAssets lists a category's assets on one exchange, with an
// optional free-text filter over symbol, description and ticker
func (s *CategoryService) GetCategoryAssets(ctx context.Context, categoryKey, exchange string, limit int, searchTerm string) (*model.CategoryAssetsResponse, error) {
	category, err := s.categoryRepo.GetCategoryByKey(ctx, categoryKey)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	supported := false
	for _, ex := range category.Exchanges {
		if strings.EqualFold(ex, exchange) {
			supported = true
			break
		}
	}
	if !supported {
		return nil, ErrExchangeNotSupported
	}

	assets, err := s.assetRepo.GetAssetsByCategory(ctx, categoryKey)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(searchTerm))
	views := make([]model.AssetView, 0, limit)
	for i := range assets {
		if len(views) >= limit {
			break
		}
		asset := &assets[i]
		if !strings.EqualFold(asset.Exchange, exchange) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(asset.Symbol), search) &&
			!strings.Contains(strings.ToLower(asset.Description), search) &&
			!strings.Contains(strings.ToLower(asset.Ticker), search) {
			continue
		}

		query := ""
		if asset.SearchQuery != nil {
			query = *asset.SearchQuery
		}
		views = append(views, model.AssetView{
			Symbol:      asset.Symbol,
			Exchange:    asset.Exchange,
			Description: asset.Description,
			Type:        asset.Type,
			Category:    categoryKey,
			Ticker:      asset.Ticker,
			SearchQuery: query,
		})
	}

	return &model.CategoryAssetsResponse{
		Category:    categoryKey,
		Exchange:    exchange,
		TotalAssets: len(views),
		Limit:       limit,
		SearchTerm:  searchTerm,
		Assets:      views,
		CategoryInfo: model.CategoryInfo{
			Name:               category.Name,
			Description:        category.Description,
			SupportedExchanges: category.Exchanges,
		},
		GeneratedAt: time.Now().UTC(),
		Timezone:    "UTC",
		Source:      "database",
	}, nil
}

// SupportedExchanges returns a category's exchange list, for error bodies
func (s *CategoryService) SupportedExchanges(ctx context.Context, categoryKey string) []string {
	category, err := s.categoryRepo.GetCategoryByKey(ctx, categoryKey)
	if err != nil || category == nil {
		return nil
	}
	return category.Exchanges
}
