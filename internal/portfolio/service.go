// Package portfolio implements the mock trading ledger behind the dashboard.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/invest-tracker/internal/logger"
	"github.com/yourusername/invest-tracker/internal/metrics"
	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/repository"
	"github.com/yourusername/invest-tracker/internal/rules"
)

// Places kept on stored money and average cost values
const (
	cashPlaces = 2
	costPlaces = 6
)

// ErrUnsupportedSide is returned for trade sides other than BUY and SELL
var ErrUnsupportedSide = errors.New("unsupported trade side")

// PriceSource supplies the latest display price per symbol
type PriceSource interface {
	Prices() map[string]float64
}

// PriceMap is a fixed PriceSource
type PriceMap map[string]float64

// Prices implements PriceSource
func (p PriceMap) Prices() map[string]float64 {
	return p
}

// TradeRequest is a buy or sell order against the latest quote
type TradeRequest struct {
	Symbol   string           `json:"symbol"`
	Side     models.TradeSide `json:"side"`
	Quantity decimal.Decimal  `json:"quantity"`
}

// Service executes mock trades and values the portfolio
type Service struct {
	repo         repository.PortfolioRepository
	allow        rules.AllowList
	prices       PriceSource
	startingCash decimal.Decimal
	audit        *logger.AuditLogger
	logger       *logrus.Logger
	now          func() time.Time

	// serialises read-modify-write cycles on the ledger
	mu sync.Mutex
}

// NewService creates a portfolio service
func NewService(repo repository.PortfolioRepository, allow rules.AllowList, prices PriceSource, startingCash decimal.Decimal, log *logrus.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("portfolio repository is required")
	}
	if prices == nil {
		return nil, errors.New("price source is required")
	}
	if !startingCash.IsPositive() {
		return nil, fmt.Errorf("starting cash must be positive, got %s", startingCash)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		repo:         repo,
		allow:        allow,
		prices:       prices,
		startingCash: startingCash,
		audit:        logger.NewAuditLogger(log),
		logger:       log,
		now:          time.Now,
	}, nil
}

// Execute dispatches a trade request by side
func (s *Service) Execute(ctx context.Context, req TradeRequest) (*models.Trade, error) {
	switch models.TradeSide(strings.ToUpper(string(req.Side))) {
	case models.TradeSideBuy:
		return s.Buy(ctx, req.Symbol, req.Quantity)
	case models.TradeSideSell:
		return s.Sell(ctx, req.Symbol, req.Quantity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSide, req.Side)
	}
}

// Buy purchases quantity shares of symbol at the latest quote
func (s *Service) Buy(ctx context.Context, symbol string, quantity decimal.Decimal) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol, price, err := s.validate(symbol, models.TradeSideBuy, quantity)
	if err != nil {
		return nil, err
	}

	cash, err := s.repo.GetCash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash: %w", err)
	}
	cost := quantity.Mul(price).Round(cashPlaces)
	if cost.GreaterThan(cash) {
		s.reject(symbol, models.TradeSideBuy, quantity, "insufficient funds")
		return nil, fmt.Errorf("%w: need %s, have %s", models.ErrInsufficientFunds, cost.StringFixed(cashPlaces), cash.StringFixed(cashPlaces))
	}

	holding, err := s.currentHolding(ctx, symbol)
	if err != nil {
		return nil, err
	}
	newQty := holding.Quantity.Add(quantity)
	holding.AverageCost = holding.CostBasis().Add(quantity.Mul(price)).DivRound(newQty, costPlaces)
	holding.Quantity = newQty

	return s.apply(ctx, cash.Sub(cost), holding, models.TradeSideBuy, quantity, price)
}

// Sell disposes of quantity shares of symbol at the latest quote
func (s *Service) Sell(ctx context.Context, symbol string, quantity decimal.Decimal) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol, price, err := s.validate(symbol, models.TradeSideSell, quantity)
	if err != nil {
		return nil, err
	}

	holding, err := s.currentHolding(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if quantity.GreaterThan(holding.Quantity) {
		s.reject(symbol, models.TradeSideSell, quantity, "insufficient holdings")
		return nil, fmt.Errorf("%w: hold %s %s, selling %s", models.ErrInsufficientHoldings, holding.Quantity, symbol, quantity)
	}

	cash, err := s.repo.GetCash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash: %w", err)
	}
	holding.Quantity = holding.Quantity.Sub(quantity)
	if holding.Quantity.IsZero() {
		holding.AverageCost = decimal.Zero
	}
	proceeds := quantity.Mul(price).Round(cashPlaces)

	return s.apply(ctx, cash.Add(proceeds), holding, models.TradeSideSell, quantity, price)
}

// Holdings returns the current open positions ordered by symbol
func (s *Service) Holdings(ctx context.Context) ([]*models.Holding, error) {
	return s.repo.GetHoldings(ctx)
}

// Trades returns the most recent trades, newest first
func (s *Service) Trades(ctx context.Context, limit int) ([]*models.Trade, error) {
	return s.repo.ListTrades(ctx, limit)
}

// Summary values the portfolio against prices. A holding without a price is
// carried at its average cost.
func (s *Service) Summary(ctx context.Context, prices map[string]float64) (*models.PortfolioSummary, error) {
	cash, err := s.repo.GetCash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash: %w", err)
	}
	holdings, err := s.repo.GetHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	summary := &models.PortfolioSummary{
		Cash:      cash,
		Positions: make([]models.PositionValue, 0, len(holdings)),
	}
	for _, h := range holdings {
		last := h.AverageCost
		if p, ok := prices[h.Symbol]; ok {
			last = decimal.NewFromFloat(p)
		}
		value := h.Quantity.Mul(last).Round(cashPlaces)
		basis := h.CostBasis().Round(cashPlaces)
		summary.Positions = append(summary.Positions, models.PositionValue{
			Holding:       *h,
			LastPrice:     last,
			MarketValue:   value,
			UnrealizedPnL: value.Sub(basis),
		})
		summary.Invested = summary.Invested.Add(basis)
		summary.MarketValue = summary.MarketValue.Add(value)
	}
	summary.UnrealizedPnL = summary.MarketValue.Sub(summary.Invested)
	summary.TotalValue = cash.Add(summary.MarketValue)

	metrics.UpdatePortfolio(summary.Cash.InexactFloat64(), summary.MarketValue.InexactFloat64())
	return summary, nil
}

// CurrentSummary values the portfolio against the service's price source
func (s *Service) CurrentSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	return s.Summary(ctx, s.prices.Prices())
}

// Reset clears all holdings and trades and restores the starting cash
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Reset(ctx, s.startingCash); err != nil {
		return fmt.Errorf("failed to reset portfolio: %w", err)
	}
	s.audit.LogPortfolioReset(s.startingCash.StringFixed(cashPlaces))
	metrics.UpdatePortfolio(s.startingCash.InexactFloat64(), 0)
	return nil
}

func (s *Service) validate(symbol string, side models.TradeSide, quantity decimal.Decimal) (string, decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !s.allow.Contains(symbol) {
		s.reject(symbol, side, quantity, "unknown symbol")
		return "", decimal.Zero, fmt.Errorf("%w: %s", models.ErrUnknownSymbol, symbol)
	}
	if !quantity.IsPositive() {
		s.reject(symbol, side, quantity, "non-positive quantity")
		return "", decimal.Zero, fmt.Errorf("%w: quantity %s", models.ErrInvalidAmount, quantity)
	}
	p, ok := s.prices.Prices()[symbol]
	if !ok || p <= 0 {
		s.reject(symbol, side, quantity, "no quote")
		return "", decimal.Zero, fmt.Errorf("%w: no quote for %s", models.ErrUnknownSymbol, symbol)
	}
	return symbol, decimal.NewFromFloat(p).Round(cashPlaces), nil
}

func (s *Service) currentHolding(ctx context.Context, symbol string) (*models.Holding, error) {
	holding, err := s.repo.GetHolding(ctx, symbol)
	if errors.Is(err, models.ErrNotFound) {
		return &models.Holding{Symbol: symbol}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load holding %s: %w", symbol, err)
	}
	return holding, nil
}

func (s *Service) apply(ctx context.Context, cash decimal.Decimal, holding *models.Holding, side models.TradeSide, quantity, price decimal.Decimal) (*models.Trade, error) {
	now := s.now().UTC()
	holding.UpdatedAt = now
	trade := &models.Trade{
		ID:         uuid.New(),
		Symbol:     holding.Symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		ExecutedAt: now,
	}
	if err := s.repo.ApplyTrade(ctx, cash, holding, trade); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}

	s.audit.LogTrade(trade.ID.String(), trade.Symbol, string(side), quantity.String(), price.StringFixed(cashPlaces), now)
	metrics.RecordTrade(string(side))
	return trade, nil
}

func (s *Service) reject(symbol string, side models.TradeSide, quantity decimal.Decimal, reason string) {
	s.audit.LogTradeRejected(symbol, string(side), quantity.String(), reason)
}
