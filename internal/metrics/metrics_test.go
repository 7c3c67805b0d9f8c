package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleValue reads a counter or gauge from the registry. A zero labelValue
// matches an unlabelled metric.
func sampleValue(t *testing.T, name, labelValue string) float64 {
	t.Helper()
	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue != "" && (len(m.GetLabel()) == 0 || m.GetLabel()[0].GetValue() != labelValue) {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordRuleParse(t *testing.T) {
	InitRegistry()
	before := sampleValue(t, "invest_tracker_rule_parses_total", OutcomeFailure)

	RecordRuleParse(OutcomeFailure)

	assert.Equal(t, before+1, sampleValue(t, "invest_tracker_rule_parses_total", OutcomeFailure))
}

func TestRecordBacktestRun(t *testing.T) {
	InitRegistry()
	before := sampleValue(t, "invest_tracker_backtest_runs_total", StatusSuccess)

	RecordBacktestRun(StatusSuccess)
	RecordBacktestRun(StatusSuccess)

	assert.Equal(t, before+2, sampleValue(t, "invest_tracker_backtest_runs_total", StatusSuccess))
}

func TestRecordBacktestObservations(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestDuration(0.002)
		RecordBacktestTransaction("BUY")
		RecordRealizedProfit(-12.5)
	})
}

func TestUpdatePortfolio(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name        string
		cash        float64
		marketValue float64
	}{
		{name: "all cash", cash: 10000, marketValue: 0},
		{name: "fully invested", cash: 0, marketValue: 10250.5},
		{name: "mixed", cash: 4000, marketValue: 6000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdatePortfolio(tt.cash, tt.marketValue)
			assert.Equal(t, tt.cash, sampleValue(t, "invest_tracker_portfolio_cash", ""))
			assert.Equal(t, tt.marketValue, sampleValue(t, "invest_tracker_portfolio_market_value", ""))
		})
	}
}

func TestSetStreamClients(t *testing.T) {
	InitRegistry()
	SetStreamClients(3)
	assert.Equal(t, float64(3), sampleValue(t, "invest_tracker_stream_clients", ""))
}

func TestHandlerExposesNamespace(t *testing.T) {
	InitRegistry()
	RecordTrade("BUY")
	RecordQuoteTick("AAPL")
	RecordNewsFetch(StatusSuccess)
	RecordHTTPRequest("/api/v1/symbols", http.MethodGet, "200", 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "invest_tracker_portfolio_trades_total"))
	assert.True(t, strings.Contains(body, "invest_tracker_quote_ticks_total"))
}
