package logger

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for rule parsing and backtest runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// lineError is satisfied by parse errors that carry a source line
type lineError interface {
	error
	LineNumber() int
}

// LogParseFailure logs a rejected rule set. Parse failures are user input
// errors, so they are logged at debug level.
func (bl *BacktestLogger) LogParseFailure(err error) {
	fields := logrus.Fields{"error": err.Error()}
	var le lineError
	if errors.As(err, &le) {
		fields["line"] = le.LineNumber()
	}
	bl.WithFields(fields).Debug("Rule set rejected")
}

// LogRunSummary logs the outcome of one backtest run.
func (bl *BacktestLogger) LogRunSummary(runID string, symbols []string, startIndex, endIndex, transactions int, totalProfit, durationMs float64) {
	bl.WithFields(logrus.Fields{
		"run_id":       runID,
		"symbols":      symbols,
		"start_index":  startIndex,
		"end_index":    endIndex,
		"transactions": transactions,
		"total_profit": totalProfit,
		"duration_ms":  durationMs,
	}).Info("Backtest run completed")
}

// LogSeriesSkipped logs a symbol that had rules but no price data.
func (bl *BacktestLogger) LogSeriesSkipped(symbol, reason string) {
	bl.WithFields(logrus.Fields{
		"symbol": symbol,
		"reason": reason,
	}).Warn("Price series skipped")
}

// LogMonteCarlo logs a trade resampling summary.
func (bl *BacktestLogger) LogMonteCarlo(runID string, iterations int, meanProfit, probabilityOfProfit float64) {
	bl.WithFields(logrus.Fields{
		"run_id":                runID,
		"iterations":            iterations,
		"mean_profit":           meanProfit,
		"probability_of_profit": probabilityOfProfit,
	}).Info("Monte carlo analysis completed")
}

// LogWalkForward logs a rolling-window summary.
func (bl *BacktestLogger) LogWalkForward(runID string, windows int, meanProfit, consistency float64) {
	bl.WithFields(logrus.Fields{
		"run_id":      runID,
		"windows":     windows,
		"mean_profit": meanProfit,
		"consistency": consistency,
	}).Info("Walk forward analysis completed")
}
