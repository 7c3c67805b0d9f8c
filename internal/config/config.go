// Package config provides configuration management for the investment tracker.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Market    MarketConfig    `mapstructure:"market" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest"`
	News      NewsConfig      `mapstructure:"news"`
	Portfolio PortfolioConfig `mapstructure:"portfolio" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. When
// Enabled is false the server keeps portfolio and backtest state in memory.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Enabled true"`
	User               string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// MarketConfig configures the tradable symbols and where prices come from
type MarketConfig struct {
	Symbols              []string `mapstructure:"symbols" validate:"required,min=1,symbols"`
	Source               string   `mapstructure:"source" validate:"required,oneof=static simulated remote"`
	DataPath             string   `mapstructure:"data_path"`
	RemoteURL            string   `mapstructure:"remote_url" validate:"omitempty,url"`
	APIKey               string   `mapstructure:"api_key"`
	RateLimit            float64  `mapstructure:"rate_limit" validate:"gte=0"`
	SimulationSeed       int64    `mapstructure:"simulation_seed"`
	SimulationLength     int      `mapstructure:"simulation_length" validate:"gte=0"`
	SimulationVolatility float64  `mapstructure:"simulation_volatility" validate:"gte=0,lt=1"`
	QuoteVolatility      float64  `mapstructure:"quote_volatility" validate:"gte=0,lt=1"`
	QuoteIntervalSeconds int      `mapstructure:"quote_interval_seconds" validate:"required,gt=0"`
	CacheTTLSeconds      int      `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	PersistResults          bool   `mapstructure:"persist_results"`
	OutputPath              string `mapstructure:"output_path"`
	DefaultWindow           int    `mapstructure:"default_window" validate:"gte=0"`
	MonteCarloIterations    int    `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	MonteCarloMaxIterations int    `mapstructure:"monte_carlo_max_iterations" validate:"gte=0"`
	MonteCarloSeed          int64  `mapstructure:"monte_carlo_seed"`
	WalkForwardWindow       int    `mapstructure:"walk_forward_window" validate:"omitempty,gte=2"`
	WalkForwardStep         int    `mapstructure:"walk_forward_step" validate:"gte=0"`
}

// NewsConfig configures the headline feed
type NewsConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	URL             string  `mapstructure:"url" validate:"omitempty,url"`
	APIKey          string  `mapstructure:"api_key"`
	RefreshSchedule string  `mapstructure:"refresh_schedule"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"gte=0"`
	MaxArticles     int     `mapstructure:"max_articles" validate:"gte=0"`
}

// PortfolioConfig configures the mock trading ledger
type PortfolioConfig struct {
	StartingCash float64 `mapstructure:"starting_cash" validate:"required,gt=0"`
}

// ServerConfig configures the HTTP listeners
type ServerConfig struct {
	HTTPPort            int      `mapstructure:"http_port" validate:"required,min=1,max=65535"`
	HealthPort          int      `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret
type SecretsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region" validate:"required_if=Enabled true"`
	Name    string `mapstructure:"name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// QuoteInterval returns the quote simulation period
func (c *Config) QuoteInterval() time.Duration {
	return time.Duration(c.Market.QuoteIntervalSeconds) * time.Second
}

// CacheTTL returns how long provider series stay cached
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Market.CacheTTLSeconds) * time.Second
}
