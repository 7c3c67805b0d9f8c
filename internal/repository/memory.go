package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/invest-tracker/internal/models"
)

// MemoryPortfolioRepository keeps the ledger in process memory
type MemoryPortfolioRepository struct {
	mu       sync.RWMutex
	cash     decimal.Decimal
	holdings map[string]models.Holding
	trades   []models.Trade
}

// NewMemoryPortfolioRepository creates an empty ledger holding startingCash
func NewMemoryPortfolioRepository(startingCash decimal.Decimal) *MemoryPortfolioRepository {
	return &MemoryPortfolioRepository{
		cash:     startingCash,
		holdings: make(map[string]models.Holding),
	}
}

// GetCash implements PortfolioRepository
func (r *MemoryPortfolioRepository) GetCash(ctx context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cash, nil
}

// GetHoldings implements PortfolioRepository
func (r *MemoryPortfolioRepository) GetHoldings(ctx context.Context) ([]*models.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	holdings := make([]*models.Holding, 0, len(r.holdings))
	for _, h := range r.holdings {
		h := h
		holdings = append(holdings, &h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

// GetHolding implements PortfolioRepository
func (r *MemoryPortfolioRepository) GetHolding(ctx context.Context, symbol string) (*models.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holdings[symbol]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &h, nil
}

// ListTrades implements PortfolioRepository
func (r *MemoryPortfolioRepository) ListTrades(ctx context.Context, limit int) ([]*models.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	trades := make([]*models.Trade, 0, len(r.trades))
	for i := len(r.trades) - 1; i >= 0; i-- {
		if limit > 0 && len(trades) == limit {
			break
		}
		t := r.trades[i]
		trades = append(trades, &t)
	}
	return trades, nil
}

// ApplyTrade implements PortfolioRepository
func (r *MemoryPortfolioRepository) ApplyTrade(ctx context.Context, cash decimal.Decimal, holding *models.Holding, trade *models.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cash = cash
	if holding.Quantity.IsZero() {
		delete(r.holdings, holding.Symbol)
	} else {
		r.holdings[holding.Symbol] = *holding
	}
	r.trades = append(r.trades, *trade)
	return nil
}

// Reset implements PortfolioRepository
func (r *MemoryPortfolioRepository) Reset(ctx context.Context, cash decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cash = cash
	r.holdings = make(map[string]models.Holding)
	r.trades = nil
	return nil
}

// MemoryBacktestResultRepository keeps backtest results in process memory
type MemoryBacktestResultRepository struct {
	mu      sync.RWMutex
	results []*models.BacktestRecord
}

// NewMemoryBacktestResultRepository creates an empty result store
func NewMemoryBacktestResultRepository() *MemoryBacktestResultRepository {
	return &MemoryBacktestResultRepository{}
}

// SaveResult implements BacktestResultRepository
func (r *MemoryBacktestResultRepository) SaveResult(ctx context.Context, result *models.BacktestRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *result
	r.results = append(r.results, &stored)
	return nil
}

// GetByID implements BacktestResultRepository
func (r *MemoryBacktestResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, result := range r.results {
		if result.ID == id {
			out := *result
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

// GetLatest implements BacktestResultRepository
func (r *MemoryBacktestResultRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sorted := make([]*models.BacktestRecord, len(r.results))
	copy(sorted, r.results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RunDate.After(sorted[j].RunDate) })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}
