// Package config provides configuration management for the wallet ledger
// service. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Provider ProviderConfig
	Price    PriceConfig
	Sync     SyncConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	ClientRPS       int
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
	MigrationsPath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// ProviderConfig holds upstream ledger provider configuration
type ProviderConfig struct {
	BaseURL           string
	APIKey            string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// PriceConfig holds price/valuation service configuration
type PriceConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// SyncConfig holds sync orchestration configuration
type SyncConfig struct {
	Cooldown     time.Duration // Minimum age of the last successful sync before a non-forced re-sync runs
	PollInterval time.Duration // Interval between sync-all passes in the worker daemon
	CacheTTL     time.Duration // TTL for dashboard summary and period datum cache entries
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			ClientRPS:       getEnvAsInt("SERVER_CLIENT_RPS", 20),
		},
		Postgres: PostgresConfig{
			Host:           getEnv("POSTGRES_HOST", "localhost"),
			Port:           getEnv("POSTGRES_PORT", "5432"),
			Database:       getEnv("POSTGRES_DB", "wallet_ledger"),
			User:           getEnv("POSTGRES_USER", "postgres"),
			Password:       getEnv("POSTGRES_PASSWORD", ""),
			MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 25),
			MigrationsPath: getEnv("POSTGRES_MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
		},
		Provider: ProviderConfig{
			BaseURL:           getEnv("LEDGER_PROVIDER_URL", ""),
			APIKey:            getEnv("LEDGER_PROVIDER_API_KEY", ""),
			PageSize:          getEnvAsInt("LEDGER_PROVIDER_PAGE_SIZE", 100),
			RequestsPerSecond: getEnvAsFloat("LEDGER_PROVIDER_RPS", 3.0),
			Timeout:           getEnvAsDuration("LEDGER_PROVIDER_TIMEOUT", 30*time.Second),
		},
		Price: PriceConfig{
			BaseURL:  getEnv("PRICE_SERVICE_URL", ""),
			Timeout:  getEnvAsDuration("PRICE_SERVICE_TIMEOUT", 10*time.Second),
			CacheTTL: getEnvAsDuration("PRICE_CACHE_TTL", 12*time.Hour),
		},
		Sync: SyncConfig{
			Cooldown:     getEnvAsDuration("SYNC_COOLDOWN", 10*time.Minute),
			PollInterval: getEnvAsDuration("SYNC_POLL_INTERVAL", 15*time.Minute),
			CacheTTL:     getEnvAsDuration("SYNC_CACHE_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Provider.PageSize <= 0 {
		return fmt.Errorf("LEDGER_PROVIDER_PAGE_SIZE must be positive, got %d", c.Provider.PageSize)
	}
	if c.Provider.RequestsPerSecond <= 0 {
		return fmt.Errorf("LEDGER_PROVIDER_RPS must be positive, got %v", c.Provider.RequestsPerSecond)
	}
	if c.Postgres.MaxConnections <= 0 {
		return fmt.Errorf("POSTGRES_MAX_CONNECTIONS must be positive, got %d", c.Postgres.MaxConnections)
	}
	if c.Sync.PollInterval < time.Minute {
		return fmt.Errorf("SYNC_POLL_INTERVAL must be at least 1m, got %v", c.Sync.PollInterval)
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
