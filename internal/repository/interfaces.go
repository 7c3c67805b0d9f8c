package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/invest-tracker/internal/models"
)

// PortfolioRepository persists the mock trading ledger
type PortfolioRepository interface {
	GetCash(ctx context.Context) (decimal.Decimal, error)
	GetHoldings(ctx context.Context) ([]*models.Holding, error)
	// GetHolding returns models.ErrNotFound when nothing is held
	GetHolding(ctx context.Context, symbol string) (*models.Holding, error)
	ListTrades(ctx context.Context, limit int) ([]*models.Trade, error)
	// ApplyTrade atomically sets cash, stores the holding (deleting it when
	// its quantity is zero) and appends the trade
	ApplyTrade(ctx context.Context, cash decimal.Decimal, holding *models.Holding, trade *models.Trade) error
	// Reset clears holdings and trades and sets cash
	Reset(ctx context.Context, cash decimal.Decimal) error
}

// BacktestResultRepository defines backtest result persistence
type BacktestResultRepository interface {
	SaveResult(ctx context.Context, result *models.BacktestRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRecord, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRecord, error)
}
