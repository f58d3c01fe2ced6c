package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/marketdata-sync/internal/config"
	"github.com/yourorg/marketdata-sync/internal/feed"
	"github.com/yourorg/marketdata-sync/internal/observability"
	"github.com/yourorg/marketdata-sync/internal/repository"
	"github.com/yourorg/marketdata-sync/internal/worker"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db, logger)
	assetRepo := repository.NewAssetRepository(db, logger)
	candleRepo := repository.NewCandleRepository(db, logger)
	currentCandleRepo := repository.NewCurrentCandleRepository(db, logger)
	syncLogRepo := repository.NewSyncLogRepository(db, logger)
	configRepo := repository.NewConfigRepository(db, logger)

	// Initialize metrics and feed client
	metrics := observability.NewDefaultMetrics()
	feedClient := feed.NewClient(cfg.Feed, metrics, logger)

	// Initialize workers and orchestrator
	orchestrator := worker.NewOrchestrator(cfg.Sync.MaxRetries, cfg.Sync.RetryDelay, cfg.Sync.JoinTimeout, logger)
	orchestrator.Register(
		worker.NewCategoriesWorker(categoryRepo, syncLogRepo, metrics, logger),
		cfg.Sync.CategoriesInterval,
	)
	orchestrator.Register(
		worker.NewAssetsWorker(categoryRepo, assetRepo, syncLogRepo, feedClient, cfg.Sync.AssetsPerExchange, metrics, logger),
		cfg.Sync.AssetsInterval,
	)
	orchestrator.Register(
		worker.NewCandlesWorker(assetRepo, candleRepo, syncLogRepo, feedClient, cfg.Sync.CandlesPerTimeframe, metrics, logger),
		cfg.Sync.CandlesInterval,
	)
	orchestrator.Register(
		worker.NewCurrentCandlesWorker(assetRepo, currentCandleRepo, syncLogRepo, feedClient, cfg.Sync.BatchSize, metrics, logger),
		cfg.Sync.CurrentCandlesInterval,
	)

	// Periodic status snapshot
	statusWriter := worker.NewStatusWriter(
		worker.StatusSources{
			Categories:     categoryRepo,
			Assets:         assetRepo,
			CurrentCandles: currentCandleRepo,
			SyncLogs:       syncLogRepo,
		},
		orchestrator,
		cfg.Sync.StatusFile,
		cfg.Sync.StatusInterval,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Record the startup in the runtime settings table
	if err := configRepo.SetConfig(ctx, "worker_last_startup", time.Now().UTC().Format(time.RFC3339), nil); err != nil {
		logger.Warn("Failed to record worker startup", zap.Error(err))
	}

	go statusWriter.Run(ctx)
	orchestrator.Run(ctx)
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}
