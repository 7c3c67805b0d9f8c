package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRecord represents a persisted backtest run
type BacktestRecord struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RunDate      time.Time       `db:"run_date" json:"run_date"`
	RuleText     string          `db:"rule_text" json:"rule_text"`
	Symbols      []string        `db:"symbols" json:"symbols"`
	StartIndex   int             `db:"start_index" json:"start_index"`
	EndIndex     int             `db:"end_index" json:"end_index"`
	TotalProfit  float64         `db:"total_profit" json:"total_profit"`
	TotalTrades  int             `db:"total_trades" json:"total_trades"`
	WinRate      float64         `db:"win_rate" json:"win_rate"`
	MaxDrawdown  float64         `db:"max_drawdown" json:"max_drawdown"`
	Transactions json.RawMessage `db:"transactions" json:"transactions"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
