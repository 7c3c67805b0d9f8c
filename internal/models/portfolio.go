package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSide is the direction of a mock trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Holding is the quantity of a symbol held in the mock portfolio
type Holding struct {
	Symbol      string          `db:"symbol" json:"symbol"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	AverageCost decimal.Decimal `db:"average_cost" json:"average_cost"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// CostBasis returns quantity times average cost
func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

// Trade is one executed mock trade
type Trade struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Symbol     string          `db:"symbol" json:"symbol"`
	Side       TradeSide       `db:"side" json:"side"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	Price      decimal.Decimal `db:"price" json:"price"`
	ExecutedAt time.Time       `db:"executed_at" json:"executed_at"`
}

// Notional returns quantity times price
func (t Trade) Notional() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// PositionValue is a holding marked to the latest quote
type PositionValue struct {
	Holding
	LastPrice     decimal.Decimal `json:"last_price"`
	MarketValue   decimal.Decimal `json:"market_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// PortfolioSummary is the dashboard view of the mock portfolio
type PortfolioSummary struct {
	Cash          decimal.Decimal `json:"cash"`
	Invested      decimal.Decimal `json:"invested"`
	MarketValue   decimal.Decimal `json:"market_value"`
	TotalValue    decimal.Decimal `json:"total_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	Positions     []PositionValue `json:"positions"`
}
