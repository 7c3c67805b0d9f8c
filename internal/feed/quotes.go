package feed

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/invest-tracker/internal/metrics"
	"github.com/yourusername/invest-tracker/internal/models"
)

// QuoteSimulator drives the dashboard's live price display with bounded
// random moves. It is safe for concurrent use.
type QuoteSimulator struct {
	mu         sync.RWMutex
	rng        *rand.Rand
	volatility float64
	quotes     map[string]models.Quote
	sinks      []QuoteSink
	now        func() time.Time
}

// NewQuoteSimulator seeds a simulator with starting prices per symbol.
// volatility is the maximum fractional move per tick.
func NewQuoteSimulator(seed int64, volatility float64, initial map[string]float64) *QuoteSimulator {
	s := &QuoteSimulator{
		rng:        rand.New(rand.NewSource(seed)),
		volatility: volatility,
		quotes:     make(map[string]models.Quote, len(initial)),
		now:        time.Now,
	}
	for symbol, price := range initial {
		symbol = strings.ToUpper(symbol)
		s.quotes[symbol] = models.Quote{Symbol: symbol, Price: price, PreviousPrice: price, Time: s.now().UTC()}
	}
	return s
}

// Subscribe registers a sink for every future tick
func (s *QuoteSimulator) Subscribe(sink QuoteSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Tick moves every price once and publishes the new quotes in symbol order
func (s *QuoteSimulator) Tick() []models.Quote {
	s.mu.Lock()
	symbols := make([]string, 0, len(s.quotes))
	for symbol := range s.quotes {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	now := s.now().UTC()
	updated := make([]models.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		prev := s.quotes[symbol]
		move := (s.rng.Float64()*2 - 1) * s.volatility
		price := roundCents(prev.Price * (1 + move))
		if price < 0.01 {
			price = 0.01
		}
		q := models.Quote{
			Symbol:        symbol,
			Price:         price,
			PreviousPrice: prev.Price,
			ChangePercent: changePercent(prev.Price, price),
			Time:          now,
		}
		s.quotes[symbol] = q
		updated = append(updated, q)
	}
	sinks := make([]QuoteSink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()

	for _, q := range updated {
		metrics.RecordQuoteTick(q.Symbol)
		for _, sink := range sinks {
			sink.PublishQuote(q)
		}
	}
	return updated
}

// Quote returns the latest quote for symbol
func (s *QuoteSimulator) Quote(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[strings.ToUpper(symbol)]
	return q, ok
}

// Prices returns the latest price per symbol
func (s *QuoteSimulator) Prices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.quotes))
	for symbol, q := range s.quotes {
		out[symbol] = q.Price
	}
	return out
}

// Quotes returns a snapshot of every quote in symbol order
func (s *QuoteSimulator) Quotes() []models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func changePercent(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return roundCents((cur - prev) / prev * 100)
}
