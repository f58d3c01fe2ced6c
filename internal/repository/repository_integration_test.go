package repository

import (
	"context"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/marketdata-sync/internal/model"
)

// openTestDB connects to the database named by TEST_DATABASE_URL and
// applies the schema. Tests in this file are skipped when the variable
// is unset so the suite stays runnable without PostgreSQL.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db, zap.NewNop()))
	return db
}

func seedTestCategory(t *testing.T, db *sqlx.DB, key string) *CategoryRepository {
	t.Helper()

	// Cascades through assets into candles and current_candles.
	_, err := db.Exec(`DELETE FROM categories WHERE key = $1`, key)
	require.NoError(t, err)

	repo := NewCategoryRepository(db, zap.NewNop())
	require.NoError(t, repo.UpsertCategory(context.Background(), &model.CategoryInput{
		Key:         key,
		Name:        "Cryptocurrency",
		Description: "Digital assets",
		Icon:        "coin",
		Exchanges:   []string{"BINANCE"},
		Timeframes:  model.ValidTimeframes,
	}))
	return repo
}

func TestUpsertCategoryTwiceKeepsOneRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	key := "it_crypto"

	repo := seedTestCategory(t, db, key)

	require.NoError(t, repo.UpsertCategory(ctx, &model.CategoryInput{
		Key:         key,
		Name:        "Cryptocurrency",
		Description: "Digital assets, revised",
		Icon:        "coin",
		Exchanges:   []string{"BINANCE", "COINBASE"},
		Timeframes:  model.ValidTimeframes,
	}))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM categories WHERE key = $1`, key))
	assert.Equal(t, 1, count)

	cat, err := repo.GetCategoryByKey(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Digital assets, revised", cat.Description)
	assert.Equal(t, []string{"BINANCE", "COINBASE"}, []string(cat.Exchanges))
}

func TestInsertCandlesSkipsDuplicateKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	key := "it_crypto_candles"
	symbol := "ITEXCH:ITBTC"

	seedTestCategory(t, db, key)

	assetRepo := NewAssetRepository(db, zap.NewNop())
	require.NoError(t, assetRepo.UpsertAsset(ctx, &model.AssetInput{
		Symbol:      symbol,
		Exchange:    "ITEXCH",
		Ticker:      "ITBTC",
		Description: "Integration test pair",
		Type:        "crypto",
		CategoryKey: key,
	}))
	asset, err := assetRepo.GetAssetBySymbol(ctx, symbol)
	require.NoError(t, err)
	require.NotNil(t, asset)

	bars := []model.OHLCV{
		{Timestamp: 1700000000, Open: 100, High: 110, Low: 99, Close: 105, Volume: 12},
		{Timestamp: 1700000060, Open: 105, High: 112, Low: 104, Close: 111, Volume: 8},
	}

	candleRepo := NewCandleRepository(db, zap.NewNop())
	inserted, err := candleRepo.InsertCandles(ctx, asset.ID, symbol, "1m", bars)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Replaying the same batch writes nothing and leaves row count intact.
	inserted, err = candleRepo.InsertCandles(ctx, asset.ID, symbol, "1m", bars)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	var count int
	require.NoError(t, db.Get(&count,
		`SELECT COUNT(*) FROM candles WHERE asset_id = $1 AND timeframe = $2`, asset.ID, "1m"))
	assert.Equal(t, 2, count)

	// A mixed batch only writes the bar with the unseen timestamp.
	bars = append(bars, model.OHLCV{Timestamp: 1700000120, Open: 111, High: 115, Low: 110, Close: 114, Volume: 5})
	inserted, err = candleRepo.InsertCandles(ctx, asset.ID, symbol, "1m", bars)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// Same timestamp under another timeframe is a distinct key.
	inserted, err = candleRepo.InsertCandles(ctx, asset.ID, symbol, "5m", bars[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}
