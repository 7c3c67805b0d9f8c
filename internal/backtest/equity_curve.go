package backtest

import (
	"encoding/json"
	"time"

	"github.com/yourusername/invest-tracker/internal/models"
)

// EquityPoint is the cumulative realized profit after one exit
type EquityPoint struct {
	Time     time.Time `json:"time" csv:"time"`
	Symbol   string    `json:"symbol" csv:"symbol"`
	Index    int       `json:"index" csv:"index"`
	Value    float64   `json:"value" csv:"value"`
	Drawdown float64   `json:"drawdown" csv:"drawdown"`
}

// EquityCurve is the realized P&L path of a run, one point per exit
type EquityCurve []EquityPoint

// BuildEquityCurve accumulates realized profits in transaction order.
// Drawdown is measured in price units from the running peak, which starts
// at zero.
func BuildEquityCurve(txs []models.Transaction) EquityCurve {
	curve := EquityCurve{}
	cumulative := 0.0
	peak := 0.0
	for _, tx := range txs {
		if !tx.IsExit() || tx.Profit == nil {
			continue
		}
		cumulative += *tx.Profit
		if cumulative > peak {
			peak = cumulative
		}
		curve = append(curve, EquityPoint{
			Time:     tx.Time,
			Symbol:   tx.Symbol,
			Index:    tx.Index,
			Value:    cumulative,
			Drawdown: peak - cumulative,
		})
	}
	return curve
}

// Values returns the cumulative profit values
func (e EquityCurve) Values() []float64 {
	values := make([]float64, len(e))
	for i, p := range e {
		values[i] = p.Value
	}
	return values
}

// MaxDrawdown returns the largest peak-to-trough fall of the curve
func (e EquityCurve) MaxDrawdown() float64 {
	maxDD := 0.0
	for _, p := range e {
		if p.Drawdown > maxDD {
			maxDD = p.Drawdown
		}
	}
	return maxDD
}

// Final returns the last cumulative value, or zero for an empty curve
func (e EquityCurve) Final() float64 {
	if len(e) == 0 {
		return 0
	}
	return e[len(e)-1].Value
}

// ToJSON exports equity curve to JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}
