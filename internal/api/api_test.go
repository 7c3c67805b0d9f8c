package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/invest-tracker/internal/backtest"
	"github.com/yourusername/invest-tracker/internal/calculator"
	"github.com/yourusername/invest-tracker/internal/feed"
	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/portfolio"
	"github.com/yourusername/invest-tracker/internal/repository"
	"github.com/yourusername/invest-tracker/internal/rules"
)

type stubNews struct {
	articles []models.NewsArticle
	fetched  time.Time
}

func (s stubNews) Latest() ([]models.NewsArticle, time.Time) {
	return s.articles, s.fetched
}

func series(symbol string, closes ...float64) models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = models.PricePoint{Time: start.AddDate(0, 0, i), Close: c}
	}
	return models.PriceSeries{Symbol: symbol, Points: points}
}

func newTestServer(t *testing.T, news NewsSource) *Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	allow := rules.NewAllowList("AAPL", "MSFT", "TSLA")
	provider := feed.NewStaticProvider(
		series("AAPL", 90, 150, 250),
		series("MSFT", 300, 200, 100),
	)
	results := repository.NewMemoryBacktestResultRepository()
	engine, err := backtest.NewEngine(backtest.Config{PersistResults: true, MonteCarloSeed: 7}, allow, provider, results, log)
	require.NoError(t, err)

	quotes := feed.NewQuoteSimulator(1, 0.01, map[string]float64{"AAPL": 100, "MSFT": 200})
	svc, err := portfolio.NewService(repository.NewMemoryPortfolioRepository(decimal.NewFromInt(1000)), allow, quotes, decimal.NewFromInt(1000), log)
	require.NoError(t, err)

	srv, err := NewServer(Dependencies{
		Engine:    engine,
		Provider:  provider,
		Portfolio: svc,
		Quotes:    quotes,
		Results:   results,
		News:      news,
		Logger:    log,
	})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := NewServer(Dependencies{})
	assert.Error(t, err)
}

func TestSymbols(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/symbols", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp symbolsResponse
	decode(t, rec, &resp)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, resp.Symbols)
	assert.Len(t, resp.Quotes, 2)
}

func TestSeries(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/series/aapl", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var s models.PriceSeries
	decode(t, rec, &s)
	assert.Equal(t, []float64{90, 150, 250}, s.Closes())

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/v1/series/NFLX", nil).Code)
	// allowed but not carried by the provider
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/v1/series/TSLA", nil).Code)
}

func TestParseRules(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/rules/parse", parseRequest{Rules: "IF 100 NULL BUY aapl\nIF NULL 200 SELL MSFT"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp parseResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Rules, 2)
	assert.Equal(t, rules.ActionBuy, resp.Rules[0].Action)
	assert.Equal(t, []string{"AAPL", "MSFT"}, resp.Symbols)
}

func TestParseRulesSyntaxError(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/rules/parse", parseRequest{Rules: "IF 100 NULL BUY AAPL\nIF 1 2 HOLD AAPL"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var synErr rules.SyntaxError
	decode(t, rec, &synErr)
	assert.Equal(t, 2, synErr.Line)
	assert.NotEmpty(t, synErr.Message)
}

func TestParseRulesBadBody(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/rules/parse", "{not json").Code)
}

func TestBacktestRunsAndPersists(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/backtest", backtestRequest{
		Rules: "IF 100 NULL BUY AAPL\nIF NULL 200 SELL AAPL",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp backtestResponse
	decode(t, rec, &resp)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 2, resp.Report.EndIndex)
	assert.Equal(t, 160.0, resp.Report.Result.TotalProfit)
	require.Len(t, resp.Report.Result.Transactions, 2)
	assert.Equal(t, models.TransactionBuy, resp.Report.Result.Transactions[0].Type)
	assert.Equal(t, models.TransactionSell, resp.Report.Result.Transactions[1].Type)
	assert.Nil(t, resp.MonteCarlo)
	assert.Nil(t, resp.WalkForward)

	rec = do(t, srv, http.MethodGet, "/api/v1/backtests/"+resp.Report.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record models.BacktestRecord
	decode(t, rec, &record)
	assert.Equal(t, resp.Report.ID, record.ID)
	assert.Equal(t, 160.0, record.TotalProfit)

	rec = do(t, srv, http.MethodGet, "/api/v1/backtests?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list map[string][]models.BacktestRecord
	decode(t, rec, &list)
	assert.Len(t, list["backtests"], 1)
}

func TestBacktestWindowAndExtras(t *testing.T) {
	srv := newTestServer(t, nil)
	end := 1

	rec := do(t, srv, http.MethodPost, "/api/v1/backtest", backtestRequest{
		Rules:                "IF 100 NULL BUY AAPL\nIF NULL 200 SELL AAPL",
		EndIndex:             &end,
		MonteCarloIterations: 50,
		WalkForward:          &walkForwardRequest{Window: 2, Step: 1},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp backtestResponse
	decode(t, rec, &resp)
	// position opened at 90 is force-closed at 150
	require.Len(t, resp.Report.Result.Transactions, 2)
	assert.Equal(t, models.TransactionSellAtClose, resp.Report.Result.Transactions[1].Type)
	assert.Equal(t, 60.0, resp.Report.Result.TotalProfit)

	require.NotNil(t, resp.MonteCarlo)
	assert.Equal(t, 50, resp.MonteCarlo.Iterations)
	assert.Empty(t, resp.MonteCarlo.Distribution)
	require.NotNil(t, resp.WalkForward)
	assert.Len(t, resp.WalkForward.Windows, 1)
}

func TestBacktestErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/backtest", backtestRequest{Rules: "IF NULL NULL BUY AAPL"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/v1/backtest", backtestRequest{
		Rules:       "IF 100 NULL BUY AAPL",
		WalkForward: &walkForwardRequest{Window: 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/v1/backtests/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/v1/backtests/00000000-0000-0000-0000-000000000001", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/v1/backtests?limit=0", nil).Code)
}

func TestBacktestRejectsInvalidRequests(t *testing.T) {
	srv := newTestServer(t, nil)
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name string
		req  backtestRequest
		want string
	}{
		{"negative window", backtestRequest{StartIndex: -5, EndIndex: intPtr(-1)}, "start_index"},
		{"negative start", backtestRequest{StartIndex: -1, EndIndex: intPtr(2)}, "start_index"},
		{"negative end", backtestRequest{EndIndex: intPtr(-1)}, "end_index"},
		{"negative iterations", backtestRequest{MonteCarloIterations: -1}, "monte_carlo_iterations"},
		{"iterations above limit", backtestRequest{MonteCarloIterations: backtest.DefaultMonteCarloMaxIterations + 1}, "monte_carlo_iterations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Rules = "IF 100 200 BUY AAPL"
			rec := do(t, srv, http.MethodPost, "/api/v1/backtest", tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, "invalid_request", body["type"])
			assert.Contains(t, body["message"], tt.want)
		})
	}
}

func TestPortfolioLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/portfolio/trades", map[string]interface{}{
		"symbol": "AAPL", "side": "BUY", "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var trade models.Trade
	decode(t, rec, &trade)
	assert.Equal(t, "AAPL", trade.Symbol)

	rec = do(t, srv, http.MethodGet, "/api/v1/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp portfolioResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Summary.Positions, 1)
	assert.Len(t, resp.Trades, 1)
	assert.True(t, resp.Summary.Cash.Equal(decimal.NewFromInt(800)), "cash %s", resp.Summary.Cash)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/v1/portfolio", nil).Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/portfolio", nil)
	decode(t, rec, &resp)
	assert.Empty(t, resp.Summary.Positions)
	assert.True(t, resp.Summary.Cash.Equal(decimal.NewFromInt(1000)))
}

func TestTradeRejections(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"overspend", map[string]interface{}{"symbol": "AAPL", "side": "BUY", "quantity": 100}, http.StatusConflict},
		{"oversell", map[string]interface{}{"symbol": "MSFT", "side": "SELL", "quantity": 1}, http.StatusConflict},
		{"unknown symbol", map[string]interface{}{"symbol": "NFLX", "side": "BUY", "quantity": 1}, http.StatusBadRequest},
		{"zero quantity", map[string]interface{}{"symbol": "AAPL", "side": "BUY", "quantity": 0}, http.StatusBadRequest},
		{"bad side", map[string]interface{}{"symbol": "AAPL", "side": "HOLD", "quantity": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/v1/portfolio/trades", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestCalculators(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/calculator/sip", map[string]interface{}{
		"monthly_amount": 1000, "annual_rate_pct": 12, "years": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var sip calculator.SIPResult
	decode(t, rec, &sip)
	assert.True(t, decimal.RequireFromString("12809.33").Equal(sip.FutureValue), sip.FutureValue.String())
	assert.Equal(t, 12, sip.Months)

	rec = do(t, srv, http.MethodPost, "/api/v1/calculator/profit", map[string]interface{}{
		"buy_price": 90, "sell_price": 250, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var profit calculator.ProfitResult
	decode(t, rec, &profit)
	assert.True(t, decimal.NewFromInt(160).Equal(profit.Profit), profit.Profit.String())

	rec = do(t, srv, http.MethodPost, "/api/v1/calculator/sip", map[string]interface{}{"monthly_amount": 0, "years": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNews(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/v1/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp newsResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Enabled)
	assert.Empty(t, resp.Articles)

	fetched := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	srv := newTestServer(t, stubNews{
		articles: []models.NewsArticle{{Title: "Markets rally", Source: "Wire"}},
		fetched:  fetched,
	})
	rec = do(t, srv, http.MethodGet, "/api/v1/news", nil)
	decode(t, rec, &resp)
	assert.True(t, resp.Enabled)
	require.Len(t, resp.Articles, 1)
	require.NotNil(t, resp.FetchedAt)
	assert.True(t, resp.FetchedAt.Equal(fetched))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, srv, http.MethodGet, "/api/v1/symbols", nil)

	rec := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invest_tracker_http_request_duration_seconds")
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.deps.AllowedOrigins = []string{"http://localhost:3000"}
	srv.router = srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/symbols", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://elsewhere.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
