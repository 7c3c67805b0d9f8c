package backtest

import (
	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/rules"
)

// Position is the per-symbol held state during a run. It only lives for the
// duration of one symbol's replay.
type Position struct {
	Held       bool
	EntryPrice *float64
}

// Open marks the position as held at price
func (p *Position) Open(price float64) {
	p.Held = true
	p.EntryPrice = &price
}

// Close flattens the position and returns the realized profit at price
func (p *Position) Close(price float64) float64 {
	profit := 0.0
	if p.EntryPrice != nil {
		profit = price - *p.EntryPrice
	}
	p.Held = false
	p.EntryPrice = nil
	return profit
}

// symbolReplay walks one symbol's window tick by tick
type symbolReplay struct {
	symbol   string
	buys     rules.RuleSet
	sells    rules.RuleSet
	position Position
	profit   float64
	txs      []models.Transaction
}

func newSymbolReplay(symbol string, symbolRules rules.RuleSet) *symbolReplay {
	return &symbolReplay{
		symbol: symbol,
		buys:   symbolRules.WithAction(rules.ActionBuy),
		sells:  symbolRules.WithAction(rules.ActionSell),
	}
}

// step applies at most one rule at the given tick
func (r *symbolReplay) step(index int, point models.PricePoint) {
	price := point.Close
	if !r.position.Held {
		for _, rule := range r.buys {
			if rule.FiresBuy(price) {
				r.position.Open(price)
				r.emit(models.TransactionBuy, index, point, nil)
				return
			}
		}
		return
	}

	for _, rule := range r.sells {
		if rule.FiresSell(price) {
			r.exit(models.TransactionSell, index, point)
			return
		}
	}
}

// finish force-closes an open position at the last tick of the window
func (r *symbolReplay) finish(index int, point models.PricePoint) {
	if r.position.Held {
		r.exit(models.TransactionSellAtClose, index, point)
	}
}

func (r *symbolReplay) exit(txType models.TransactionType, index int, point models.PricePoint) {
	profit := r.position.Close(point.Close)
	r.profit += profit
	r.emit(txType, index, point, &profit)
}

func (r *symbolReplay) emit(txType models.TransactionType, index int, point models.PricePoint, profit *float64) {
	r.txs = append(r.txs, models.Transaction{
		Type:   txType,
		Symbol: r.symbol,
		Price:  point.Close,
		Profit: profit,
		Index:  index,
		Time:   point.Time,
	})
}
