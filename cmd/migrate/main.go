package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourorg/marketdata-sync/internal/config"
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

	logger, err := zap.NewProduction()
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

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Create tables
	if err := repository.Migrate(ctx, db, logger); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	// Seed the bootstrap categories
	categoryRepo := repository.NewCategoryRepository(db, logger)
	for _, input := range worker.Catalog() {
		if err := categoryRepo.UpsertCategory(ctx, &input); err != nil {
			logger.Fatal("Category seed failed", zap.Error(err), zap.String("key", input.Key))
		}
	}

	// Stamp the applied schema version
	configRepo := repository.NewConfigRepository(db, logger)
	description := "schema version applied by cmd/migrate"
	if err := configRepo.SetConfig(ctx, "schema_version", repository.SchemaVersion, &description); err != nil {
		logger.Fatal("Schema version stamp failed", zap.Error(err))
	}

	logger.Info("Migration complete",
		zap.String("schema_version", repository.SchemaVersion),
		zap.Int("categories_seeded", len(worker.Catalog())))
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

	return sqlx.Connect("pgx", dsn)
}
