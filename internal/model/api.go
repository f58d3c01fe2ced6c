package model

import "time"

// CategoryView is one category as served by the categories endpoints
type CategoryView struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Icon           string   `json:"icon"`
	Exchanges      []string `json:"exchanges"`
	Timeframes     []string `json:"timeframes"`
	PopularSymbols []string `json:"popular_symbols"`
	TotalSymbols   int      `json:"total_symbols,omitempty"`
	TotalExchanges int      `json:"total_exchanges,omitempty"`
}

// CategoryStatistics aggregates the categories listing
type CategoryStatistics struct {
	TotalCategories     int      `json:"total_categories"`
	TotalExchanges      int      `json:"total_exchanges"`
	TotalPopularSymbols int      `json:"total_popular_symbols"`
	SupportedTimeframes []string `json:"supported_timeframes"`
}

// CategoriesResponse is the body of GET /api/categories
type CategoriesResponse struct {
	Categories  map[string]*CategoryView `json:"categories"`
	Statistics  CategoryStatistics       `json:"statistics"`
	GeneratedAt time.Time                `json:"generated_at"`
	Timezone    string                   `json:"timezone"`
	Source      string                   `json:"source"`
}

// AssetView is one asset as served by the category-assets endpoint
type AssetView struct {
	Symbol      string `json:"symbol"`
	Exchange    string `json:"exchange"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Ticker      string `json:"ticker"`
	SearchQuery string `json:"search_query"`
}

// CategoryAssetsResponse is the body of GET /api/category-assets
type CategoryAssetsResponse struct {
	Category     string       `json:"category"`
	Exchange     string       `json:"exchange"`
	TotalAssets  int          `json:"total_assets"`
	Limit        int          `json:"limit"`
	SearchTerm   string       `json:"search_term"`
	Assets       []AssetView  `json:"assets"`
	CategoryInfo CategoryInfo `json:"category_info"`
	GeneratedAt  time.Time    `json:"generated_at"`
	Timezone     string       `json:"timezone"`
	Source       string       `json:"source"`
}

// CategoryInfo is the category summary embedded in asset listings
type CategoryInfo struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	SupportedExchanges []string `json:"supported_exchanges"`
}

// CandleView is one historical bar as served by the candles endpoint
type CandleView struct {
	Timestamp int64     `json:"timestamp"`
	Datetime  time.Time `json:"datetime"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// CandlesResponse is the body of GET /api/candles
type CandlesResponse struct {
	Symbol            string       `json:"symbol"`
	Timeframe         string       `json:"timeframe"`
	TotalCandles      int          `json:"total_candles"`
	HistoricalCandles []CandleView `json:"historical_candles"`
	GeneratedAt       time.Time    `json:"generated_at"`
	Timezone          string       `json:"timezone"`
	Source            string       `json:"source"`
}

// CurrentCandleResponse is the body of GET /api/current-candle
type CurrentCandleResponse struct {
	Symbol             string    `json:"symbol"`
	Timeframe          string    `json:"timeframe"`
	Timestamp          int64     `json:"timestamp"`
	Datetime           time.Time `json:"datetime"`
	Open               float64   `json:"open"`
	High               float64   `json:"high"`
	Low                float64   `json:"low"`
	Close              float64   `json:"close"`
	Volume             float64   `json:"volume"`
	PriceChange        float64   `json:"price_change"`
	PriceChangePercent float64   `json:"price_change_percent"`
	IsPositive         bool      `json:"is_positive"`
	GeneratedAt        time.Time `json:"generated_at"`
	Timezone           string    `json:"timezone"`
	Source             string    `json:"source"`
	LastUpdate         time.Time `json:"last_update"`
}

// SymbolSearchView is one hit as served by the search-symbols endpoint,
// symbol combined into the EXCHANGE:TICKER form
type SymbolSearchView struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Exchange    string `json:"exchange"`
}
