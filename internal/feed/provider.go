// Package feed supplies price series to the backtest engine and live quotes
// to the dashboard.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/invest-tracker/internal/models"
)

// Provider returns historical closes for a symbol
type Provider interface {
	// Series returns the full series for symbol. Symbols the provider does
	// not carry yield an error wrapping models.ErrUnknownSymbol.
	Series(ctx context.Context, symbol string) (models.PriceSeries, error)

	// Symbols lists the symbols the provider carries
	Symbols() []string
}

// QuoteSink receives simulated quote updates
type QuoteSink interface {
	PublishQuote(quote models.Quote)
}

// IsUnknownSymbol reports whether err means the provider has no data for a symbol
func IsUnknownSymbol(err error) bool {
	return errors.Is(err, models.ErrUnknownSymbol)
}

func unknownSymbol(symbol string) error {
	return fmt.Errorf("%w: %s", models.ErrUnknownSymbol, symbol)
}
