package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	CoinGecko  CoinGeckoConfig  `envconfig:"COINGECKO"`
	Funding    FundingConfig    `envconfig:"FUNDING"`
	Screener   ScreenerConfig   `envconfig:"SCREENER"`
	Database   DatabaseConfig   `envconfig:"DATABASE"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	Telegram   TelegramConfig   `envconfig:"TELEGRAM"`
	Health     HealthConfig     `envconfig:"HEALTH"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// CoinGeckoConfig represents market data provider parameters
type CoinGeckoConfig struct {
	APIKey      string        `envconfig:"COINGECKO_API_KEY" required:"false"`
	BaseURL     string        `envconfig:"COINGECKO_BASE_URL" default:"https://pro-api.coingecko.com/api/v3"`
	Timeout     time.Duration `envconfig:"COINGECKO_TIMEOUT" default:"30s"`
	DailyDays   int           `envconfig:"COINGECKO_DAILY_DAYS" default:"120"`
	HourlyDays  int           `envconfig:"COINGECKO_HOURLY_DAYS" default:"90"`
	Concurrency int           `envconfig:"COINGECKO_CONCURRENCY" default:"8"`
}

// FundingConfig represents derivatives funding rate source parameters
type FundingConfig struct {
	Enabled bool          `envconfig:"FUNDING_ENABLED" default:"true"`
	Timeout time.Duration `envconfig:"FUNDING_TIMEOUT" default:"30s"`
}

// ScreenerConfig represents refresh cycle parameters
type ScreenerConfig struct {
	RefreshInterval time.Duration `envconfig:"SCREENER_REFRESH_INTERVAL" default:"1h"`
	HourlyCacheTTL  time.Duration `envconfig:"SCREENER_HOURLY_CACHE_TTL" default:"6h"`
	LockTTL         time.Duration `envconfig:"SCREENER_LOCK_TTL" default:"15m"`
	AlertTopN       int           `envconfig:"SCREENER_ALERT_TOP_N" default:"5"`
	AlertScoreFloor float64       `envconfig:"SCREENER_ALERT_SCORE_FLOOR" default:"1.5"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"screener"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// ClickHouseConfig represents snapshot sink connection parameters
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"true"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database string `envconfig:"CLICKHOUSE_DATABASE" default:"screener"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
}

// RedisConfig represents cache and lock backend parameters
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// TelegramConfig represents alert bot configuration
type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// HealthConfig represents health endpoint parameters
type HealthConfig struct {
	Addr string `envconfig:"HEALTH_ADDR" default:":8080"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:"logs/screener.log"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.CoinGecko.DailyDays < 30 {
		return fmt.Errorf("coingecko daily_days must be at least 30")
	}
	if c.CoinGecko.HourlyDays < 1 {
		return fmt.Errorf("coingecko hourly_days must be positive")
	}
	if c.CoinGecko.Concurrency < 1 {
		return fmt.Errorf("coingecko concurrency must be positive")
	}

	if c.Screener.RefreshInterval < time.Minute {
		return fmt.Errorf("refresh_interval must be at least 1m")
	}
	if c.Screener.LockTTL <= 0 {
		return fmt.Errorf("lock_ttl must be positive")
	}
	if c.Screener.AlertTopN < 1 {
		return fmt.Errorf("alert_top_n must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram chat_id is required when telegram is enabled")
		}
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}
