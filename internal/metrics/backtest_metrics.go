package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rule parse outcomes
const (
	OutcomeSuccess = "accepted"
	OutcomeFailure = "rejected"
)

// Backtest counter vectors
var (
	RuleParsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_parses_total",
		Help:      "Total number of rule texts parsed by outcome",
	}, []string{"outcome"})
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
	BacktestTransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_transactions_total",
		Help:      "Total number of transactions emitted by backtests by type",
	}, []string{"type"})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	BacktestRealizedProfit = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_realized_profit",
		Help:      "Realized profit per closed backtest trade in price units",
		Buckets:   []float64{-100, -50, -10, -1, 0, 1, 10, 50, 100},
	})
)

// RecordRuleParse records a rule parse attempt.
// outcome should be OutcomeSuccess or OutcomeFailure
func RecordRuleParse(outcome string) {
	RuleParsesTotal.WithLabelValues(outcome).Inc()
}

// RecordBacktestRun records a backtest run event.
func RecordBacktestRun(status string) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}

// RecordBacktestTransaction records one emitted transaction.
func RecordBacktestTransaction(txType string) {
	BacktestTransactionsTotal.WithLabelValues(txType).Inc()
}

// RecordRealizedProfit records the profit of one closed trade.
func RecordRealizedProfit(profit float64) {
	BacktestRealizedProfit.Observe(profit)
}
