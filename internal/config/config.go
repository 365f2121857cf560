package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream positions API
	Upstream UpstreamConfig

	// Pagination behaviour of the position aggregator
	Aggregator AggregatorConfig

	// 0x swap-quote API
	ZeroEx ZeroExConfig

	// Chain and token constants
	Chain ChainConfig

	// Redis configuration
	Redis RedisConfig

	// Database configuration
	Database DatabaseConfig

	// API server configuration
	API APIConfig

	// Snapshot worker configuration
	Snapshot SnapshotConfig

	// Logging configuration
	Log LogConfig
}

// UpstreamConfig holds positions API connection settings
type UpstreamConfig struct {
	BaseURL        string        `envconfig:"API_SERVER_URL" default:"http://localhost:3001"`
	Network        string        `envconfig:"UPSTREAM_NETWORK" default:"base"`
	RequestTimeout time.Duration `envconfig:"UPSTREAM_REQUEST_TIMEOUT" default:"15s"`
	MaxRetries     uint          `envconfig:"UPSTREAM_MAX_RETRIES" default:"2"`
	RetryMaxWait   time.Duration `envconfig:"UPSTREAM_RETRY_MAX_WAIT" default:"5s"`
}

// AggregatorConfig holds the pagination safety valves
type AggregatorConfig struct {
	PageLimit int           `envconfig:"AGGREGATOR_PAGE_LIMIT" default:"50"`
	MaxPages  int           `envconfig:"AGGREGATOR_MAX_PAGES" default:"20"`
	PageDelay time.Duration `envconfig:"AGGREGATOR_PAGE_DELAY" default:"200ms"`
}

// ZeroExConfig holds swap-quote API settings
type ZeroExConfig struct {
	BaseURL        string        `envconfig:"ZEROEX_BASE_URL" default:"https://api.0x.org"`
	APIKey         string        `envconfig:"ZEROEX_API_KEY" default:""`
	RequestTimeout time.Duration `envconfig:"ZEROEX_REQUEST_TIMEOUT" default:"15s"`
	RateLimitRPS   int           `envconfig:"ZEROEX_RATE_LIMIT_RPS" default:"5"`
}

// ChainConfig holds chain ids and token contract constants.
// It is loaded once and handed to constructors by value.
type ChainConfig struct {
	RPCURL         string            `envconfig:"ETH_RPC_URL" default:"https://mainnet.base.org"`
	ChainID        int64             `envconfig:"ETH_CHAIN_ID" default:"8453"`
	RequestTimeout time.Duration     `envconfig:"ETH_REQUEST_TIMEOUT" default:"10s"`
	MaxRetries     int               `envconfig:"ETH_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration     `envconfig:"ETH_RETRY_DELAY" default:"1s"`
	NativeToken    string            `envconfig:"CHAIN_NATIVE_TOKEN" default:"0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"`
	USDCByChain    map[string]string `envconfig:"CHAIN_USDC_ADDRESSES" default:"8453:0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913,1:0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`
	BaseChainID    string            `envconfig:"CHAIN_BASE_ID" default:"8453"`

	// Token gate
	GateTokenAddress  string `envconfig:"GATE_TOKEN_ADDRESS" default:"0xf1a7000000950c7ad8aff13118bb7ab561a448ee"`
	GateTokenSymbol   string `envconfig:"GATE_TOKEN_SYMBOL" default:"FLAY"`
	GateTokenDecimals int32  `envconfig:"GATE_TOKEN_DECIMALS" default:"18"`
	GateMinBalance    string `envconfig:"GATE_MIN_BALANCE" default:"100"`
}

// USDCAddress returns the USDC contract for a chain id.
// Unknown chains fall back to the mainnet contract.
func (c ChainConfig) USDCAddress(chainID string) string {
	if addr, ok := c.USDCByChain[chainID]; ok {
		return addr
	}
	return c.USDCByChain["1"]
}

// IsBase reports whether chainID is the Base chain
func (c ChainConfig) IsBase(chainID string) bool {
	return chainID == c.BaseChainID
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Enabled         bool          `envconfig:"DB_ENABLED" default:"true"`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"analytics"`
	Password        string        `envconfig:"DB_PASSWORD" default:"analytics"`
	Name            string        `envconfig:"DB_NAME" default:"position_analytics"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	DetailsCacheTTL time.Duration `envconfig:"DETAILS_CACHE_TTL" default:"10m"`
}

// SnapshotConfig holds snapshot worker settings
type SnapshotConfig struct {
	MetricsPort int           `envconfig:"SNAPSHOT_METRICS_PORT" default:"8080"`
	Interval    time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"15m"`
	WorkerCount int           `envconfig:"SNAPSHOT_WORKER_COUNT" default:"4"`

	// Wallets to snapshot (comma-separated addresses)
	Wallets []string `envconfig:"SNAPSHOT_WALLETS" default:""`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from a .env file (if present) and environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe zero value
func (c *Config) Validate() error {
	var errs []error

	if c.Aggregator.PageLimit <= 0 {
		errs = append(errs, fmt.Errorf("AGGREGATOR_PAGE_LIMIT must be positive, got %d", c.Aggregator.PageLimit))
	}
	if c.Aggregator.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("AGGREGATOR_MAX_PAGES must be positive, got %d", c.Aggregator.MaxPages))
	}
	if c.Aggregator.PageDelay <= 0 {
		errs = append(errs, fmt.Errorf("AGGREGATOR_PAGE_DELAY must be positive, got %s", c.Aggregator.PageDelay))
	}
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		errs = append(errs, errors.New("API_SERVER_URL must be set"))
	}
	if c.Snapshot.WorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_WORKER_COUNT must be positive, got %d", c.Snapshot.WorkerCount))
	}

	return errors.Join(errs...)
}
