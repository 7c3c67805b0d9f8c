package backtest

import (
	"fmt"

	"github.com/yourusername/invest-tracker/internal/config"
)

// DefaultMonteCarloMaxIterations bounds per-request resampling when no
// limit is configured
const DefaultMonteCarloMaxIterations = 10000

// Config holds backtest-specific settings
type Config struct {
	PersistResults          bool
	OutputPath              string
	DefaultWindow           int
	MonteCarloIterations    int
	MonteCarloMaxIterations int
	MonteCarloSeed          int64
	WalkForwardWindow       int
	WalkForwardStep         int
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}
	bt := Config{
		PersistResults:          cfg.PersistResults,
		OutputPath:              cfg.OutputPath,
		DefaultWindow:           cfg.DefaultWindow,
		MonteCarloIterations:    cfg.MonteCarloIterations,
		MonteCarloMaxIterations: cfg.MonteCarloMaxIterations,
		MonteCarloSeed:          cfg.MonteCarloSeed,
		WalkForwardWindow:       cfg.WalkForwardWindow,
		WalkForwardStep:         cfg.WalkForwardStep,
	}
	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.DefaultWindow < 0 {
		return fmt.Errorf("default window cannot be negative")
	}
	if c.MonteCarloIterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	if c.MonteCarloMaxIterations < 0 {
		return fmt.Errorf("monte carlo max iterations cannot be negative")
	}
	if c.MonteCarloIterations > c.MaxMonteCarloIterations() {
		return fmt.Errorf("monte carlo iterations %d exceed the limit of %d", c.MonteCarloIterations, c.MaxMonteCarloIterations())
	}
	if c.WalkForwardWindow != 0 && c.WalkForwardWindow < 2 {
		return fmt.Errorf("walk forward window must be at least 2 ticks")
	}
	if c.WalkForwardStep < 0 {
		return fmt.Errorf("walk forward step cannot be negative")
	}
	return nil
}

// MaxMonteCarloIterations returns the configured resampling limit, falling
// back to DefaultMonteCarloMaxIterations
func (c Config) MaxMonteCarloIterations() int {
	if c.MonteCarloMaxIterations > 0 {
		return c.MonteCarloMaxIterations
	}
	return DefaultMonteCarloMaxIterations
}
