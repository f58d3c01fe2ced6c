package config

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Feed     FeedConfig
	Sync     SyncConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// FeedConfig holds external feed specific configuration
type FeedConfig struct {
	ChartURL      string
	SearchURL     string
	Origin        string
	StreamTimeout time.Duration
	SearchTimeout time.Duration
}

// SyncConfig holds sync worker and orchestrator configuration.
// Intervals are overridable via SYNC_INTERVAL_* environment variables,
// retry settings via MAX_RETRIES / RETRY_DELAY, either as Go duration
// strings or as a bare number of seconds.
type SyncConfig struct {
	CategoriesInterval     time.Duration
	AssetsInterval         time.Duration
	CandlesInterval        time.Duration
	CurrentCandlesInterval time.Duration
	MaxRetries             int
	RetryDelay             time.Duration
	BatchSize              int
	AssetsPerExchange      int
	CandlesPerTimeframe    int
	StatusFile             string
	StatusInterval         time.Duration
	JoinTimeout            time.Duration
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Read from environment variables
	v.AutomaticEnv()
	bindEnvOverrides(v)

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		bareSecondsHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bareSecondsHookFunc converts a unit-less integer string into a duration
// counted in seconds, so SYNC_INTERVAL_CATEGORIES=3600 means one hour.
// Values with a unit suffix fall through to the standard duration hook.
func bareSecondsHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		secs, err := strconv.ParseInt(data.(string), 10, 64)
		if err != nil {
			return data, nil
		}
		return time.Duration(secs) * time.Second, nil
	}
}

// bindEnvOverrides maps the flat environment variable names used in
// deployment to their config keys. Interval and delay variables take Go
// duration syntax ("30m") or a bare number of seconds ("3600").
func bindEnvOverrides(v *viper.Viper) {
	v.BindEnv("sync.categoriesInterval", "SYNC_INTERVAL_CATEGORIES")
	v.BindEnv("sync.assetsInterval", "SYNC_INTERVAL_ASSETS")
	v.BindEnv("sync.candlesInterval", "SYNC_INTERVAL_CANDLES")
	v.BindEnv("sync.currentCandlesInterval", "SYNC_INTERVAL_CURRENT")
	v.BindEnv("sync.maxRetries", "MAX_RETRIES")
	v.BindEnv("sync.retryDelay", "RETRY_DELAY")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Feed defaults
	v.SetDefault("feed.chartURL", "wss://data.tradingview.com/socket.io/websocket")
	v.SetDefault("feed.searchURL", "https://symbol-search.tradingview.com/symbol_search/")
	v.SetDefault("feed.origin", "https://www.tradingview.com")
	v.SetDefault("feed.streamTimeout", "5s")
	v.SetDefault("feed.searchTimeout", "10s")

	// Sync defaults
	v.SetDefault("sync.categoriesInterval", "1h")
	v.SetDefault("sync.assetsInterval", "30m")
	v.SetDefault("sync.candlesInterval", "1h")
	v.SetDefault("sync.currentCandlesInterval", "1m")
	v.SetDefault("sync.maxRetries", 3)
	v.SetDefault("sync.retryDelay", "60s")
	v.SetDefault("sync.batchSize", 5)
	v.SetDefault("sync.assetsPerExchange", 20)
	v.SetDefault("sync.candlesPerTimeframe", 1000)
	v.SetDefault("sync.statusFile", "logs/worker_status.json")
	v.SetDefault("sync.statusInterval", "5m")
	v.SetDefault("sync.joinTimeout", "10s")

	// Cache defaults
	v.SetDefault("cache.ttl", "5s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
