package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for portfolio changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogTrade logs an executed portfolio trade. Amounts are passed as strings
// so decimal values are recorded without float rounding.
func (al *AuditLogger) LogTrade(tradeID, symbol, side, quantity, price string, executedAt time.Time) {
	al.WithFields(logrus.Fields{
		"trade_id":    tradeID,
		"symbol":      symbol,
		"side":        side,
		"quantity":    quantity,
		"price":       price,
		"executed_at": executedAt.Unix(),
	}).Info("Trade recorded")
}

// LogTradeRejected logs a trade that failed validation.
func (al *AuditLogger) LogTradeRejected(symbol, side, quantity, reason string) {
	al.WithFields(logrus.Fields{
		"symbol":   symbol,
		"side":     side,
		"quantity": quantity,
		"reason":   reason,
	}).Warn("Trade rejected")
}

// LogPortfolioReset logs a full portfolio reset.
func (al *AuditLogger) LogPortfolioReset(startingCash string) {
	al.WithFields(logrus.Fields{
		"starting_cash": startingCash,
	}).Warn("Portfolio reset")
}
