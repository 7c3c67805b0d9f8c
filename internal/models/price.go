package models

import (
	"fmt"
	"time"
)

// PricePoint is one historical close for a symbol
type PricePoint struct {
	Time  time.Time `json:"time" csv:"time"`
	Close float64   `json:"close" csv:"close"`
}

// PriceSeries is an ascending-by-time sequence of closes for one symbol
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of ticks in the series
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns the closing prices in tick order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Slice returns the points in the inclusive index range [start, end], clamped
// to the bounds of the series.
func (s PriceSeries) Slice(start, end int) []PricePoint {
	if start < 0 {
		start = 0
	}
	if end >= len(s.Points) {
		end = len(s.Points) - 1
	}
	if start > end {
		return nil
	}
	return s.Points[start : end+1]
}

// Validate checks that timestamps are strictly ascending and prices are usable
func (s PriceSeries) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidSeries)
	}
	for i, p := range s.Points {
		if p.Close < 0 {
			return fmt.Errorf("%w: %s negative close at index %d", ErrInvalidSeries, s.Symbol, i)
		}
		if i == 0 {
			continue
		}
		if !p.Time.After(s.Points[i-1].Time) {
			return fmt.Errorf("%w: %s timestamps not strictly ascending at index %d", ErrInvalidSeries, s.Symbol, i)
		}
	}
	return nil
}

// Quote is the latest simulated display price for a symbol
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	PreviousPrice float64   `json:"previous_price"`
	ChangePercent float64   `json:"change_percent"`
	Time          time.Time `json:"time"`
}
