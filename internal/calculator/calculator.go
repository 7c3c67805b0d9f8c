// Package calculator implements the dashboard's SIP and trade profit calculators.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/invest-tracker/internal/models"
)

const places = 2

var hundred = decimal.NewFromInt(100)

// SIPRequest describes a systematic investment plan
type SIPRequest struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`
	Years         int             `json:"years"`
}

// SIPResult is the projected outcome of a SIP
type SIPResult struct {
	Invested    decimal.Decimal `json:"invested"`
	FutureValue decimal.Decimal `json:"future_value"`
	Gains       decimal.Decimal `json:"gains"`
	Months      int             `json:"months"`
}

// SIP projects the future value of monthly contributions made at the start of
// each month and compounded monthly: FV = P * ((1+i)^n - 1) / i * (1+i).
func SIP(req SIPRequest) (SIPResult, error) {
	if !req.MonthlyAmount.IsPositive() {
		return SIPResult{}, fmt.Errorf("%w: monthly amount %s", models.ErrInvalidAmount, req.MonthlyAmount)
	}
	if req.AnnualRatePct.IsNegative() {
		return SIPResult{}, fmt.Errorf("annual rate cannot be negative, got %s", req.AnnualRatePct)
	}
	if req.Years <= 0 {
		return SIPResult{}, fmt.Errorf("years must be positive, got %d", req.Years)
	}

	months := req.Years * 12
	n := decimal.NewFromInt(int64(months))
	invested := req.MonthlyAmount.Mul(n)

	var fv decimal.Decimal
	if req.AnnualRatePct.IsZero() {
		fv = invested
	} else {
		i := req.AnnualRatePct.Div(hundred).Div(decimal.NewFromInt(12))
		growth := decimal.NewFromInt(1).Add(i)
		fv = req.MonthlyAmount.
			Mul(growth.Pow(n).Sub(decimal.NewFromInt(1))).
			Div(i).
			Mul(growth)
	}

	fv = fv.Round(places)
	invested = invested.Round(places)
	return SIPResult{
		Invested:    invested,
		FutureValue: fv,
		Gains:       fv.Sub(invested),
		Months:      months,
	}, nil
}

// ProfitRequest describes a closed position
type ProfitRequest struct {
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ProfitResult is the absolute and percentage return of a position
type ProfitResult struct {
	Cost          decimal.Decimal `json:"cost"`
	Proceeds      decimal.Decimal `json:"proceeds"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
}

// Profit computes the return of buying quantity at BuyPrice and selling at SellPrice
func Profit(req ProfitRequest) (ProfitResult, error) {
	if !req.BuyPrice.IsPositive() {
		return ProfitResult{}, fmt.Errorf("%w: buy price %s", models.ErrInvalidAmount, req.BuyPrice)
	}
	if req.SellPrice.IsNegative() {
		return ProfitResult{}, fmt.Errorf("%w: sell price %s", models.ErrInvalidAmount, req.SellPrice)
	}
	if !req.Quantity.IsPositive() {
		return ProfitResult{}, fmt.Errorf("%w: quantity %s", models.ErrInvalidAmount, req.Quantity)
	}

	cost := req.BuyPrice.Mul(req.Quantity)
	proceeds := req.SellPrice.Mul(req.Quantity)
	profit := proceeds.Sub(cost)
	return ProfitResult{
		Cost:          cost.Round(places),
		Proceeds:      proceeds.Round(places),
		Profit:        profit.Round(places),
		ProfitPercent: profit.Div(cost).Mul(hundred).Round(places),
	}, nil
}
