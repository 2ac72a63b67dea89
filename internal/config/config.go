// Package config provides configuration management for the investment tracker.
// It loads configuration from environment variables and .env files.
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
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Quotes     QuotesConfig
	Cache      CacheConfig
	Operations OperationsConfig
	RateLimit  RateLimitConfig
	SMTP       SMTPConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// AuthConfig holds token and password configuration
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

// QuotesConfig holds quote provider configuration
type QuotesConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CacheConfig holds quote cache TTLs
type CacheConfig struct {
	QuoteTTL time.Duration
	ChartTTL time.Duration
}

// OperationsConfig holds ledger validation configuration
type OperationsConfig struct {
	// BlockShortSelling rejects sells that exceed the currently held
	// quantity. Off by default to match the recorded ledger semantics.
	BlockShortSelling bool
}

// RateLimitConfig holds rate limiting configuration for auth endpoints
type RateLimitConfig struct {
	AuthRPS   int
	AuthBurst int
}

// SMTPConfig holds outbound mail configuration for password recovery
type SMTPConfig struct {
	Host         string
	Port         int
	Sender       string
	Password     string
	ResetURLBase string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "3001"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "invest_tracker"),
				User:           getEnv("POSTGRES_USER", "invest"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      getEnvAsDuration("AUTH_TOKEN_TTL", 8*time.Hour),
			ResetTokenTTL: getEnvAsDuration("AUTH_RESET_TOKEN_TTL", time.Hour),
		},
		Quotes: QuotesConfig{
			BaseURL: getEnv("QUOTES_BASE_URL", "https://query2.finance.yahoo.com"),
			Timeout: getEnvAsDuration("QUOTES_TIMEOUT", 8*time.Second),
		},
		Cache: CacheConfig{
			QuoteTTL: getEnvAsDuration("CACHE_QUOTE_TTL", 5*time.Minute),
			ChartTTL: getEnvAsDuration("CACHE_CHART_TTL", time.Hour),
		},
		Operations: OperationsConfig{
			BlockShortSelling: getEnvAsBool("OPERATIONS_BLOCK_SHORT_SELLING", false),
		},
		RateLimit: RateLimitConfig{
			AuthRPS:   getEnvAsInt("RATE_LIMIT_AUTH_RPS", 5),
			AuthBurst: getEnvAsInt("RATE_LIMIT_AUTH_BURST", 10),
		},
		SMTP: SMTPConfig{
			Host:         getEnv("SMTP_HOST", ""),
			Port:         getEnvAsInt("SMTP_PORT", 465),
			Sender:       getEnv("SMTP_SENDER", ""),
			Password:     getEnv("SMTP_PASSWORD", ""),
			ResetURLBase: getEnv("RESET_URL_BASE", "http://localhost:5173/reset-password"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
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

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
