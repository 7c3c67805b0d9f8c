package backtest

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/yourusername/invest-tracker/internal/models"
)

// Metrics summarises the closed trades of a run
type Metrics struct {
	TotalProfit   float64 `json:"total_profit"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	ForcedCloses  int     `json:"forced_closes"`
	WinRate       float64 `json:"win_rate"`
	ProfitFactor  float64 `json:"profit_factor"`
	AverageProfit float64 `json:"average_profit"`
	AverageWin    float64 `json:"average_win"`
	AverageLoss   float64 `json:"average_loss"`
	LargestWin    float64 `json:"largest_win"`
	LargestLoss   float64 `json:"largest_loss"`
	ProfitStdDev  float64 `json:"profit_std_dev"`
	MaxDrawdown   float64 `json:"max_drawdown"`
}

// profitFactorCap is reported when there are wins and no losses
const profitFactorCap = 999

// CalculateMetrics calculates metrics from a run and its equity curve
func CalculateMetrics(result Result, curve EquityCurve) Metrics {
	m := Metrics{TotalProfit: result.TotalProfit}

	profits := realizedProfits(result.Transactions)
	m.TotalTrades = len(profits)
	if m.TotalTrades == 0 {
		return m
	}
	for _, tx := range result.Transactions {
		if tx.Type == models.TransactionSellAtClose {
			m.ForcedCloses++
		}
	}

	var wins, losses stats.Float64Data
	for _, p := range profits {
		switch {
		case p > 0:
			wins = append(wins, p)
		case p < 0:
			losses = append(losses, p)
		}
	}
	m.WinningTrades = len(wins)
	m.LosingTrades = len(losses)
	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)

	m.AverageProfit, _ = stats.Mean(profits)
	m.ProfitStdDev, _ = stats.StandardDeviationPopulation(profits)
	if len(wins) > 0 {
		m.AverageWin, _ = stats.Mean(wins)
		m.LargestWin, _ = stats.Max(wins)
	}
	if len(losses) > 0 {
		m.AverageLoss, _ = stats.Mean(losses)
		m.LargestLoss, _ = stats.Min(losses)
	}
	m.ProfitFactor = profitFactor(wins, losses)
	m.MaxDrawdown = curve.MaxDrawdown()
	return m
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func realizedProfits(txs []models.Transaction) stats.Float64Data {
	profits := stats.Float64Data{}
	for _, tx := range txs {
		if tx.IsExit() && tx.Profit != nil {
			profits = append(profits, *tx.Profit)
		}
	}
	return profits
}

func profitFactor(wins, losses stats.Float64Data) float64 {
	grossProfit := sum(wins)
	grossLoss := math.Abs(sum(losses))
	if grossLoss == 0 {
		if grossProfit > 0 {
			return profitFactorCap
		}
		return 0
	}
	return grossProfit / grossLoss
}

// sum is stats.Sum with zero for empty input
func sum(values stats.Float64Data) float64 {
	if len(values) == 0 {
		return 0
	}
	total, _ := stats.Sum(values)
	return total
}
