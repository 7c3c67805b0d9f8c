package models

import "errors"

// Custom errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidID            = errors.New("invalid ID format")
	ErrUnknownSymbol        = errors.New("unknown symbol")
	ErrInvalidSeries        = errors.New("invalid price series")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)
