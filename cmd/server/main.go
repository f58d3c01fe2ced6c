package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/marketdata-sync/internal/cache"
	"github.com/yourorg/marketdata-sync/internal/config"
	"github.com/yourorg/marketdata-sync/internal/feed"
	"github.com/yourorg/marketdata-sync/internal/handler"
	"github.com/yourorg/marketdata-sync/internal/middleware"
	"github.com/yourorg/marketdata-sync/internal/observability"
	"github.com/yourorg/marketdata-sync/internal/repository"
	"github.com/yourorg/marketdata-sync/internal/service"
	"github.com/yourorg/marketdata-sync/internal/ws"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	// Initialize metrics, feed client and cache
	metrics := observability.NewDefaultMetrics()
	feedClient := feed.NewClient(cfg.Feed, metrics, logger)
	responseCache := cache.NewResponseCache(cfg.Cache.TTL)

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo, assetRepo, logger)
	marketDataService := service.NewMarketDataService(candleRepo, currentCandleRepo, feedClient, logger)

	// Initialize WebSocket hub
	hub := ws.NewHub(candleRepo, feedClient, metrics, logger)

	// Initialize handlers
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	marketDataHandler := handler.NewMarketDataHandler(marketDataService, responseCache, metrics, logger)
	cacheHandler := handler.NewCacheHandler(responseCache, logger)
	healthHandler := handler.NewHealthHandler(db, responseCache, hub.ConnectionCount, logger)

	// Set up HTTP server with Gin
	router := setupRouter(
		categoryHandler,
		marketDataHandler,
		cacheHandler,
		healthHandler,
		hub,
		metrics,
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
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

func setupRouter(
	categoryHandler *handler.CategoryHandler,
	marketDataHandler *handler.MarketDataHandler,
	cacheHandler *handler.CacheHandler,
	healthHandler *handler.HealthHandler,
	hub *ws.Hub,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(metrics))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket streaming
	router.GET("/ws", hub.Handle)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.GetHealth)

		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:key", categoryHandler.GetCategoryDetails)
		api.GET("/category-assets", categoryHandler.GetCategoryAssets)

		api.GET("/candles", marketDataHandler.GetCandles)
		api.GET("/current-candle", marketDataHandler.GetCurrentCandle)
		api.GET("/search-symbols", marketDataHandler.SearchSymbols)

		cacheRoutes := api.Group("/cache")
		{
			cacheRoutes.GET("/status", cacheHandler.GetStatus)
			cacheRoutes.GET("/clear", cacheHandler.Clear)
		}
	}

	return router
}
