package backtest

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/montanaflynn/stats"
)

// MonteCarloConfig configures trade bootstrap resampling
type MonteCarloConfig struct {
	Iterations int
	Seed       int64
}

// MonteCarloResult is the distribution of total profit when the realized
// trades of a run are resampled with replacement
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	Trades              int                `json:"trades"`
	MeanProfit          float64            `json:"mean_profit"`
	StdProfit           float64            `json:"std_profit"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	Percentiles         map[string]float64 `json:"percentiles"`
	Distribution        []float64          `json:"distribution,omitempty"`
}

var monteCarloPercentiles = []float64{5, 25, 50, 75, 95}

// RunMonteCarlo resamples the realized profits of result. The same seed
// always yields the same distribution.
func RunMonteCarlo(result Result, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		return MonteCarloResult{}, fmt.Errorf("iterations must be positive, got %d", cfg.Iterations)
	}
	profits := realizedProfits(result.Transactions)
	out := MonteCarloResult{
		Iterations:  cfg.Iterations,
		Trades:      len(profits),
		Percentiles: map[string]float64{},
	}
	if len(profits) == 0 {
		return out, nil
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	distribution := make(stats.Float64Data, cfg.Iterations)
	positive := 0
	for i := range distribution {
		total := 0.0
		for range profits {
			total += profits[rng.Intn(len(profits))]
		}
		distribution[i] = total
		if total > 0 {
			positive++
		}
	}

	out.MeanProfit, _ = stats.Mean(distribution)
	out.StdProfit, _ = stats.StandardDeviationPopulation(distribution)
	out.ProbabilityOfProfit = float64(positive) / float64(cfg.Iterations)
	for _, p := range monteCarloPercentiles {
		v, err := stats.PercentileNearestRank(distribution, p)
		if err != nil {
			return MonteCarloResult{}, fmt.Errorf("failed to compute p%.0f: %w", p, err)
		}
		out.Percentiles[fmt.Sprintf("p%.0f", p)] = v
	}
	out.Distribution = distribution
	return out, nil
}

// ToJSON exports the monte carlo result to JSON
func (m MonteCarloResult) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}
