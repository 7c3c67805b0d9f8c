package backtest

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/rules"
)

// WalkForwardConfig configures rolling-window evaluation
type WalkForwardConfig struct {
	WindowSize int
	StepSize   int
}

// WalkForwardWindow represents one evaluated window
type WalkForwardWindow struct {
	WindowID   int     `json:"window_id"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Result     Result  `json:"result"`
	Metrics    Metrics `json:"metrics"`
}

// WalkForwardResult represents the rolling-window outcome
type WalkForwardResult struct {
	Windows          []WalkForwardWindow `json:"windows"`
	MeanProfit       float64             `json:"mean_profit"`
	ConsistencyScore float64             `json:"consistency_score"`
}

// RunWalkForward replays ruleSet over consecutive windows of WindowSize
// ticks, advancing StepSize ticks each time, within [startIndex, endIndex].
// Each window is an independent run, so positions never carry across.
func RunWalkForward(ruleSet rules.RuleSet, series map[string]models.PriceSeries, startIndex, endIndex int, cfg WalkForwardConfig) (WalkForwardResult, error) {
	if cfg.WindowSize < 2 {
		return WalkForwardResult{}, fmt.Errorf("window size must be at least 2, got %d", cfg.WindowSize)
	}
	if cfg.StepSize <= 0 {
		cfg.StepSize = cfg.WindowSize
	}

	windows := []WalkForwardWindow{}
	windowID := 0
	for start := startIndex; start+cfg.WindowSize-1 <= endIndex; start += cfg.StepSize {
		end := start + cfg.WindowSize - 1
		windowID++
		result := Run(ruleSet, series, start, end)
		windows = append(windows, WalkForwardWindow{
			WindowID:   windowID,
			StartIndex: start,
			EndIndex:   end,
			Result:     result,
			Metrics:    CalculateMetrics(result, BuildEquityCurve(result.Transactions)),
		})
	}

	return WalkForwardResult{
		Windows:          windows,
		MeanProfit:       meanWindowProfit(windows),
		ConsistencyScore: CalculateConsistency(windows),
	}, nil
}

// CalculateConsistency calculates the share of windows with positive profit
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	profitable := 0
	for _, w := range windows {
		if w.Result.TotalProfit > 0 {
			profitable++
		}
	}
	return float64(profitable) / float64(len(windows))
}

func meanWindowProfit(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range windows {
		total += w.Result.TotalProfit
	}
	return total / float64(len(windows))
}

// ToJSON exports the walk-forward result to JSON
func (w WalkForwardResult) ToJSON() string {
	data, _ := json.Marshal(w)
	return string(data)
}
