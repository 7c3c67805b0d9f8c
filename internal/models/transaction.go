package models

import "time"

// TransactionType identifies what a backtest transaction did
type TransactionType string

const (
	TransactionBuy         TransactionType = "BUY"
	TransactionSell        TransactionType = "SELL"
	TransactionSellAtClose TransactionType = "SELL_AT_CLOSE"
)

// Transaction is one simulated fill produced by a backtest run.
// Profit is set only for SELL and SELL_AT_CLOSE.
type Transaction struct {
	Type   TransactionType `json:"type"`
	Symbol string          `json:"symbol"`
	Price  float64         `json:"price"`
	Profit *float64        `json:"profit,omitempty"`
	Index  int             `json:"index"`
	Time   time.Time       `json:"time"`
}

// IsExit reports whether the transaction closes a position
func (t Transaction) IsExit() bool {
	return t.Type == TransactionSell || t.Type == TransactionSellAtClose
}
