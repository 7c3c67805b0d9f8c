package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/invest-tracker/internal/feed"
	"github.com/yourusername/invest-tracker/internal/logger"
	"github.com/yourusername/invest-tracker/internal/metrics"
	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/repository"
	"github.com/yourusername/invest-tracker/internal/rules"
)

// Result is the outcome of replaying a rule set over a window
type Result struct {
	TotalProfit  float64              `json:"total_profit"`
	Transactions []models.Transaction `json:"transactions"`
}

// Run replays series through ruleSet over the inclusive index window
// [startIndex, endIndex]. Symbols are replayed independently in the order
// they first appear in ruleSet. Missing or short series contribute nothing,
// as does any window that holds fewer than two ticks after clamping.
// Any position still open after the last tick is closed at that tick.
func Run(ruleSet rules.RuleSet, series map[string]models.PriceSeries, startIndex, endIndex int) Result {
	result := Result{Transactions: []models.Transaction{}}
	if startIndex >= endIndex {
		return result
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= endIndex {
		return result
	}

	for _, symbol := range ruleSet.Symbols() {
		s, ok := series[symbol]
		if !ok || s.Len() == 0 || startIndex >= s.Len() {
			continue
		}
		last := endIndex
		if last >= s.Len() {
			last = s.Len() - 1
		}
		if last <= startIndex {
			continue
		}

		replay := newSymbolReplay(symbol, ruleSet.ForSymbol(symbol))
		for i := startIndex; i <= last; i++ {
			replay.step(i, s.Points[i])
		}
		replay.finish(last, s.Points[last])

		result.TotalProfit += replay.profit
		result.Transactions = append(result.Transactions, replay.txs...)
	}
	return result
}

// Report bundles a run with its inputs and derived statistics
type Report struct {
	ID          uuid.UUID     `json:"id"`
	Rules       rules.RuleSet `json:"rules"`
	StartIndex  int           `json:"start_index"`
	EndIndex    int           `json:"end_index"`
	Result      Result        `json:"result"`
	Metrics     Metrics       `json:"metrics"`
	EquityCurve EquityCurve   `json:"equity_curve"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Engine parses rule text, loads price series and runs backtests
type Engine struct {
	config   Config
	allow    rules.AllowList
	provider feed.Provider
	repo     repository.BacktestResultRepository
	logger   *logrus.Logger
	btLogger *logger.BacktestLogger
}

// NewEngine creates a new backtesting engine. repo may be nil, in which case
// results are not persisted.
func NewEngine(cfg Config, allow rules.AllowList, provider feed.Provider, repo repository.BacktestResultRepository, log *logrus.Logger) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("price provider is required")
	}
	if allow.Len() == 0 {
		return nil, fmt.Errorf("symbol allow-list is empty")
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		config:   cfg,
		allow:    allow,
		provider: provider,
		repo:     repo,
		logger:   log,
		btLogger: logger.NewBacktestLogger(log),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() Config {
	return e.config
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// AllowList returns the symbols rules may reference
func (e *Engine) AllowList() rules.AllowList {
	return e.allow
}

// Parse parses rule text against the engine allow-list
func (e *Engine) Parse(text string) (rules.RuleSet, error) {
	rs, err := rules.ParseRules(text, e.allow)
	if err != nil {
		metrics.RecordRuleParse(metrics.OutcomeFailure)
		e.btLogger.LogParseFailure(err)
		return nil, err
	}
	metrics.RecordRuleParse(metrics.OutcomeSuccess)
	return rs, nil
}

// Evaluate parses text and runs it over the window. A *rules.SyntaxError is
// returned unwrapped so callers can show it next to the editor.
func (e *Engine) Evaluate(ctx context.Context, text string, startIndex, endIndex int) (*Report, error) {
	rs, err := e.Parse(text)
	if err != nil {
		return nil, err
	}
	return e.EvaluateRuleSet(ctx, rs, startIndex, endIndex)
}

// EvaluateRuleSet loads the series referenced by rs and runs the backtest
func (e *Engine) EvaluateRuleSet(ctx context.Context, rs rules.RuleSet, startIndex, endIndex int) (*Report, error) {
	series, err := e.LoadSeries(ctx, rs.Symbols())
	if err != nil {
		metrics.RecordBacktestRun(metrics.StatusFailure)
		return nil, err
	}
	return e.EvaluateSeries(ctx, rs, series, startIndex, endIndex)
}

// EvaluateSeries runs rs over already loaded series and records the run
func (e *Engine) EvaluateSeries(ctx context.Context, rs rules.RuleSet, series map[string]models.PriceSeries, startIndex, endIndex int) (*Report, error) {
	started := time.Now()
	result := Run(rs, series, startIndex, endIndex)
	curve := BuildEquityCurve(result.Transactions)
	report := &Report{
		ID:          uuid.New(),
		Rules:       rs,
		StartIndex:  startIndex,
		EndIndex:    endIndex,
		Result:      result,
		Metrics:     CalculateMetrics(result, curve),
		EquityCurve: curve,
		GeneratedAt: time.Now().UTC(),
	}

	elapsed := time.Since(started)
	metrics.RecordBacktestRun(metrics.StatusSuccess)
	metrics.RecordBacktestDuration(elapsed.Seconds())
	for _, tx := range result.Transactions {
		metrics.RecordBacktestTransaction(string(tx.Type))
		if tx.Profit != nil {
			metrics.RecordRealizedProfit(*tx.Profit)
		}
	}
	e.btLogger.LogRunSummary(report.ID.String(), rs.Symbols(), startIndex, endIndex, len(result.Transactions), result.TotalProfit, float64(elapsed.Microseconds())/1000)

	if e.config.PersistResults && e.repo != nil {
		if err := e.persist(ctx, rs, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// LastIndex returns the index of the final tick of the longest series, or -1
// when there is none
func LastIndex(series map[string]models.PriceSeries) int {
	last := -1
	for _, s := range series {
		if s.Len()-1 > last {
			last = s.Len() - 1
		}
	}
	return last
}

// LoadSeries fetches one series per symbol. Symbols the provider does not
// know are skipped so they simply contribute no transactions.
func (e *Engine) LoadSeries(ctx context.Context, symbols []string) (map[string]models.PriceSeries, error) {
	series := make(map[string]models.PriceSeries, len(symbols))
	for _, symbol := range symbols {
		s, err := e.provider.Series(ctx, symbol)
		if err != nil {
			if feed.IsUnknownSymbol(err) {
				e.btLogger.LogSeriesSkipped(symbol, err.Error())
				continue
			}
			return nil, fmt.Errorf("failed to load series for %s: %w", symbol, err)
		}
		series[symbol] = s
	}
	return series, nil
}

func (e *Engine) persist(ctx context.Context, rs rules.RuleSet, report *Report) error {
	txs, err := json.Marshal(report.Result.Transactions)
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	record := &models.BacktestRecord{
		ID:           report.ID,
		RunDate:      report.GeneratedAt,
		RuleText:     rs.String(),
		Symbols:      rs.Symbols(),
		StartIndex:   report.StartIndex,
		EndIndex:     report.EndIndex,
		TotalProfit:  report.Result.TotalProfit,
		TotalTrades:  report.Metrics.TotalTrades,
		WinRate:      report.Metrics.WinRate,
		MaxDrawdown:  report.Metrics.MaxDrawdown,
		Transactions: txs,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.repo.SaveResult(ctx, record); err != nil {
		return fmt.Errorf("failed to persist backtest result: %w", err)
	}
	return nil
}
