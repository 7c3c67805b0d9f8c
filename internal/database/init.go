package database

import (
	"context"
	"fmt"

	"github.com/yourusername/invest-tracker/internal/config"
)

// schema creates the tables the repositories use. Every statement is
// idempotent so it runs on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS portfolio_account (
		id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		cash       NUMERIC(20, 4) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS portfolio_holdings (
		symbol       TEXT PRIMARY KEY,
		quantity     NUMERIC(20, 6) NOT NULL CHECK (quantity > 0),
		average_cost NUMERIC(20, 6) NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS portfolio_trades (
		id          UUID PRIMARY KEY,
		symbol      TEXT NOT NULL,
		side        TEXT NOT NULL CHECK (side IN ('BUY', 'SELL')),
		quantity    NUMERIC(20, 6) NOT NULL,
		price       NUMERIC(20, 4) NOT NULL,
		executed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS portfolio_trades_executed_at_idx ON portfolio_trades (executed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS backtest_results (
		id           UUID PRIMARY KEY,
		run_date     TIMESTAMPTZ NOT NULL,
		rule_text    TEXT NOT NULL,
		symbols      TEXT[] NOT NULL,
		start_index  INTEGER NOT NULL,
		end_index    INTEGER NOT NULL,
		total_profit DOUBLE PRECISION NOT NULL,
		total_trades INTEGER NOT NULL,
		win_rate     DOUBLE PRECISION NOT NULL,
		max_drawdown DOUBLE PRECISION NOT NULL,
		transactions JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS backtest_results_run_date_idx ON backtest_results (run_date DESC)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
