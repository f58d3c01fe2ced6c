package worker

import (
	"github.com/yourorg/marketdata-sync/internal/model"
)

// categoryCatalog is the fixed bootstrap catalog upserted by the
// categories worker. Keys are the natural ids assets reference.
var categoryCatalog = []model.CategoryInput{
	{
		Key:         "forex",
		Name:        "Forex",
		Description: "Currencies and exchange pairs",
		Icon:        "💱",
		Exchanges:   []string{"FX_IDC", "FXCM", "OANDA"},
		Timeframes:  allTimeframes,
	},
	{
		Key:         "crypto",
		Name:        "Crypto",
		Description: "Cryptocurrencies and digital tokens",
		Icon:        "₿",
		Exchanges:   []string{"BINANCE", "COINBASE", "KRAKEN", "BITFINEX"},
		Timeframes:  allTimeframes,
	},
	{
		Key:         "stocks",
		Name:        "Stocks",
		Description: "Company shares",
		Icon:        "📈",
		Exchanges:   []string{"NASDAQ", "NYSE", "AMEX", "LSE"},
		Timeframes:  allTimeframes,
	},
	{
		Key:         "indices",
		Name:        "Indices",
		Description: "Market indices",
		Icon:        "📊",
		Exchanges:   []string{"NASDAQ", "NYSE", "CBOE", "CME"},
		Timeframes:  allTimeframes,
	},
	{
		Key:         "commodities",
		Name:        "Commodities",
		Description: "Raw materials and goods",
		Icon:        "🥇",
		Exchanges:   []string{"COMEX", "NYMEX", "CBOT", "LME"},
		Timeframes:  allTimeframes,
	},
	{
		Key:         "bonds",
		Name:        "Bonds",
		Description: "Government and corporate debt",
		Icon:        "🏛️",
		Exchanges:   []string{"CBOT", "EUREX", "TSE"},
		Timeframes:  allTimeframes,
	},
	{
		Key:         "etfs",
		Name:        "ETFs",
		Description: "Exchange-traded funds",
		Icon:        "📦",
		Exchanges:   []string{"NYSE", "NASDAQ", "AMEX"},
		Timeframes:  allTimeframes,
	},
	{
		Key:         "futures",
		Name:        "Futures",
		Description: "Futures contracts",
		Icon:        "⏰",
		Exchanges:   []string{"CME", "CBOT", "NYMEX", "COMEX", "EUREX"},
		Timeframes:  allTimeframes,
	},
}

var allTimeframes = []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d", "1w", "1M"}

// Catalog exposes the bootstrap categories for one-off seeding
func Catalog() []model.CategoryInput {
	return categoryCatalog
}
