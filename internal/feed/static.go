package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/invest-tracker/internal/models"
)

const dateLayout = "2006-01-02"

// dailyDocument is the external time series JSON layout
type dailyDocument struct {
	MetaData struct {
		Symbol string `json:"2. Symbol"`
	} `json:"Meta Data"`
	TimeSeries map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

// ParseDailySeries decodes a daily time series document into a typed series
// sorted by ascending date
func ParseDailySeries(data []byte) (models.PriceSeries, error) {
	var doc dailyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.PriceSeries{}, fmt.Errorf("%w: %v", models.ErrInvalidSeries, err)
	}
	symbol := strings.ToUpper(strings.TrimSpace(doc.MetaData.Symbol))
	if symbol == "" {
		return models.PriceSeries{}, fmt.Errorf("%w: missing symbol", models.ErrInvalidSeries)
	}

	points := make([]models.PricePoint, 0, len(doc.TimeSeries))
	for date, bar := range doc.TimeSeries {
		ts, err := time.Parse(dateLayout, date)
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("%w: bad date %q", models.ErrInvalidSeries, date)
		}
		closePrice, err := decimal.NewFromString(bar.Close)
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("%w: bad close %q on %s", models.ErrInvalidSeries, bar.Close, date)
		}
		points = append(points, models.PricePoint{Time: ts, Close: closePrice.InexactFloat64()})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	series := models.PriceSeries{Symbol: symbol, Points: points}
	if err := series.Validate(); err != nil {
		return models.PriceSeries{}, err
	}
	return series, nil
}

// StaticProvider serves series held in memory
type StaticProvider struct {
	series  map[string]models.PriceSeries
	symbols []string
}

// NewStaticProvider creates a provider over fixed series
func NewStaticProvider(series ...models.PriceSeries) *StaticProvider {
	p := &StaticProvider{series: make(map[string]models.PriceSeries, len(series))}
	for _, s := range series {
		symbol := strings.ToUpper(s.Symbol)
		if _, ok := p.series[symbol]; !ok {
			p.symbols = append(p.symbols, symbol)
		}
		s.Symbol = symbol
		p.series[symbol] = s
	}
	return p
}

// LoadStaticProvider parses every *.json file in dir
func LoadStaticProvider(dir string) (*StaticProvider, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	series := make([]models.PriceSeries, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		s, err := ParseDailySeries(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(file), err)
		}
		series = append(series, s)
	}
	return NewStaticProvider(series...), nil
}

// Series implements Provider
func (p *StaticProvider) Series(ctx context.Context, symbol string) (models.PriceSeries, error) {
	s, ok := p.series[strings.ToUpper(symbol)]
	if !ok {
		return models.PriceSeries{}, unknownSymbol(symbol)
	}
	return s, nil
}

// Symbols implements Provider
func (p *StaticProvider) Symbols() []string {
	out := make([]string, len(p.symbols))
	copy(out, p.symbols)
	return out
}
