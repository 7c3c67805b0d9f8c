// Package metrics provides centralized Prometheus metrics registry for the investment tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invest_tracker"

// Label values shared by outcome counters
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	TradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portfolio_trades_total",
		Help:      "Total number of portfolio trades by side",
	}, []string{"side"})
	QuoteTicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_ticks_total",
		Help:      "Total number of simulated quote ticks by symbol",
	}, []string{"symbol"})
	NewsFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "news_fetches_total",
		Help:      "Total number of news refreshes by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	PortfolioCash = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_cash",
		Help:      "Uninvested cash in the portfolio",
	})
	PortfolioMarketValue = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_market_value",
		Help:      "Market value of all holdings at the latest quotes",
	})
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Number of connected quote stream clients",
	})
)

// Histogram metrics
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(TradesTotal)
		registry.MustRegister(QuoteTicksTotal)
		registry.MustRegister(NewsFetchesTotal)

		// Register gauge metrics
		registry.MustRegister(PortfolioCash)
		registry.MustRegister(PortfolioMarketValue)
		registry.MustRegister(StreamClients)

		// Register histogram metrics
		registry.MustRegister(HTTPRequestDuration)

		// Register backtest metrics
		registry.MustRegister(RuleParsesTotal)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestTransactionsTotal)
		registry.MustRegister(BacktestRealizedProfit)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordTrade records an executed portfolio trade.
func RecordTrade(side string) {
	TradesTotal.WithLabelValues(side).Inc()
}

// RecordQuoteTick records one simulated quote update.
func RecordQuoteTick(symbol string) {
	QuoteTicksTotal.WithLabelValues(symbol).Inc()
}

// RecordNewsFetch records a news refresh attempt.
func RecordNewsFetch(status string) {
	NewsFetchesTotal.WithLabelValues(status).Inc()
}

// UpdatePortfolio updates the portfolio cash and market value gauges.
func UpdatePortfolio(cash, marketValue float64) {
	PortfolioCash.Set(cash)
	PortfolioMarketValue.Set(marketValue)
}

// SetStreamClients updates the connected stream client gauge.
func SetStreamClients(count int) {
	StreamClients.Set(float64(count))
}

// RecordHTTPRequest records an API request duration.
func RecordHTTPRequest(route, method, code string, durationSeconds float64) {
	HTTPRequestDuration.WithLabelValues(route, method, code).Observe(durationSeconds)
}
