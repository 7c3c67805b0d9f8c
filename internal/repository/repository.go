// Package repository persists portfolio and backtest state.
package repository

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/invest-tracker/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Portfolio      PortfolioRepository
	BacktestResult BacktestResultRepository
}

// NewRepositories creates the PostgreSQL implementations. startingCash
// seeds the account row on first use.
func NewRepositories(db *database.DB, startingCash decimal.Decimal) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Portfolio:      NewPostgresPortfolioRepository(db, startingCash),
		BacktestResult: NewPostgresBacktestResultRepository(db),
	}, nil
}

// NewMemoryRepositories creates in-process implementations
func NewMemoryRepositories(startingCash decimal.Decimal) *Repositories {
	return &Repositories{
		Portfolio:      NewMemoryPortfolioRepository(startingCash),
		BacktestResult: NewMemoryBacktestResultRepository(),
	}
}
