package feed

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/invest-tracker/internal/models"
)

// SimulatedConfig configures the random-walk generator
type SimulatedConfig struct {
	Symbols    []string
	Length     int
	Seed       int64
	Volatility float64
	StartPrice float64
	StartDate  time.Time
}

// SimulatedProvider generates deterministic random-walk daily closes
type SimulatedProvider struct {
	cfg   SimulatedConfig
	known map[string]struct{}
}

// NewSimulatedProvider creates a simulated provider. Zero values fall back
// to 250 ticks, 2% volatility, a start price of 100 and 2024-01-01.
func NewSimulatedProvider(cfg SimulatedConfig) *SimulatedProvider {
	if cfg.Length <= 0 {
		cfg.Length = 250
	}
	if cfg.Volatility <= 0 {
		cfg.Volatility = 0.02
	}
	if cfg.StartPrice <= 0 {
		cfg.StartPrice = 100
	}
	if cfg.StartDate.IsZero() {
		cfg.StartDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	known := make(map[string]struct{}, len(cfg.Symbols))
	symbols := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		s = strings.ToUpper(s)
		if _, ok := known[s]; ok {
			continue
		}
		known[s] = struct{}{}
		symbols = append(symbols, s)
	}
	cfg.Symbols = symbols
	return &SimulatedProvider{cfg: cfg, known: known}
}

// Series implements Provider. The same seed and symbol always produce the
// same series.
func (p *SimulatedProvider) Series(ctx context.Context, symbol string) (models.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)
	if _, ok := p.known[symbol]; !ok {
		return models.PriceSeries{}, unknownSymbol(symbol)
	}

	rng := rand.New(rand.NewSource(p.cfg.Seed ^ symbolSeed(symbol)))
	points := make([]models.PricePoint, p.cfg.Length)
	price := p.cfg.StartPrice
	for i := range points {
		if i > 0 {
			price *= 1 + rng.NormFloat64()*p.cfg.Volatility
			if price < 0.01 {
				price = 0.01
			}
		}
		points[i] = models.PricePoint{
			Time:  p.cfg.StartDate.AddDate(0, 0, i),
			Close: roundCents(price),
		}
	}
	return models.PriceSeries{Symbol: symbol, Points: points}, nil
}

// Symbols implements Provider
func (p *SimulatedProvider) Symbols() []string {
	out := make([]string, len(p.cfg.Symbols))
	copy(out, p.cfg.Symbols)
	return out
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
