package model

import (
	"time"
)

// Asset represents a tradable instrument in the EXCHANGE:TICKER form
type Asset struct {
	ID          string    `json:"id" db:"id"`
	Symbol      string    `json:"symbol" db:"symbol"`
	Exchange    string    `json:"exchange" db:"exchange"`
	Ticker      string    `json:"ticker" db:"ticker"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
	CategoryKey string    `json:"category_key" db:"category_key"`
	SearchQuery *string   `json:"search_query,omitempty" db:"search_query"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	LastUpdate  time.Time `json:"last_update" db:"last_update"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AssetInput holds the fields upserted by the assets sync worker.
// Going inactive is a soft state, never a deletion.
type AssetInput struct {
	Symbol      string  `json:"symbol"`
	Exchange    string  `json:"exchange"`
	Ticker      string  `json:"ticker"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	CategoryKey string  `json:"category_key"`
	SearchQuery *string `json:"search_query,omitempty"`
}

// SymbolSearchResult is one row returned by the external symbol-search endpoint
type SymbolSearchResult struct {
	Symbol      string `json:"symbol"`
	Exchange    string `json:"exchange"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
