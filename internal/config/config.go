// Package config provides configuration management for the split ledger service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PublicRPCEndpoint is the fallback Ethereum RPC endpoint used when neither
// an explicit override nor an Alchemy API key is configured.
const PublicRPCEndpoint = "https://ethereum-rpc.publicnode.com"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Chain    ChainConfig
	Storage  StorageConfig
	Resolver ResolverConfig
	AutoSave AutoSaveConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
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

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// ChainConfig holds the Ethereum L1 endpoint configuration used for name
// resolution. ENS resolution always starts from L1.
type ChainConfig struct {
	RPCOverride   string // Explicit endpoint, takes precedence over everything
	AlchemyAPIKey string // Managed key, used when no explicit endpoint is set
}

// RPCEndpoint returns the resolution endpoint honoring the configured
// precedence: explicit override > Alchemy-key-derived > public fallback.
func (c *ChainConfig) RPCEndpoint() string {
	if c.RPCOverride != "" {
		return c.RPCOverride
	}
	if c.AlchemyAPIKey != "" {
		return fmt.Sprintf("https://eth-mainnet.g.alchemy.com/v2/%s", c.AlchemyAPIKey)
	}
	return PublicRPCEndpoint
}

// StorageConfig holds content-addressed store configuration
type StorageConfig struct {
	PinEndpoint string // Pinning API base URL
	GatewayURL  string // Read gateway base URL for fetches
	APIToken    string // Bearer token for the pinning API
	Timeout     time.Duration
}

// ResolverConfig holds name resolver configuration
type ResolverConfig struct {
	RequestsPerSecond float64       // Rate limit for resolution calls
	Burst             int           // Rate limiter burst size
	CacheTTL          time.Duration // TTL for cached resolution results
}

// AutoSaveConfig holds debounced auto-save configuration
type AutoSaveConfig struct {
	Debounce time.Duration // Quiet window after the last mutation before a save fires
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "split_ledger"),
				User:           getEnv("POSTGRES_USER", "ledger"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Chain: ChainConfig{
			RPCOverride:   getEnv("ETH_RPC_URL", ""),
			AlchemyAPIKey: getEnv("ALCHEMY_API_KEY", ""),
		},
		Storage: StorageConfig{
			PinEndpoint: getEnv("PIN_API_URL", "https://api.pinata.cloud"),
			GatewayURL:  getEnv("PIN_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs"),
			APIToken:    getEnv("PIN_API_TOKEN", ""),
			Timeout:     getEnvAsDuration("PIN_TIMEOUT", 30*time.Second),
		},
		Resolver: ResolverConfig{
			RequestsPerSecond: getEnvAsFloat("RESOLVER_RPS", 5),
			Burst:             getEnvAsInt("RESOLVER_BURST", 10),
			CacheTTL:          getEnvAsDuration("RESOLVER_CACHE_TTL", 5*time.Minute),
		},
		AutoSave: AutoSaveConfig{
			Debounce: getEnvAsDuration("AUTOSAVE_DEBOUNCE", 2*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// DatabaseURL returns the Postgres URL used by migrations
func (c *PostgresConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
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
