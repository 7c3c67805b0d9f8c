package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/yourusername/invest-tracker/internal/database"
	"github.com/yourusername/invest-tracker/internal/models"
)

// PostgresPortfolioRepository implements PortfolioRepository for PostgreSQL
type PostgresPortfolioRepository struct {
	db           *database.DB
	startingCash decimal.Decimal
}

// NewPostgresPortfolioRepository creates a new portfolio repository
func NewPostgresPortfolioRepository(db *database.DB, startingCash decimal.Decimal) PortfolioRepository {
	return &PostgresPortfolioRepository{db: db, startingCash: startingCash}
}

// GetCash returns the account cash, seeding the account on first use
func (r *PostgresPortfolioRepository) GetCash(ctx context.Context) (decimal.Decimal, error) {
	_, err := r.db.GetPool().Exec(ctx,
		`INSERT INTO portfolio_account (id, cash) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`,
		r.startingCash,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to seed portfolio account: %w", err)
	}

	var cash decimal.Decimal
	if err := r.db.GetPool().QueryRow(ctx, `SELECT cash FROM portfolio_account WHERE id = 1`).Scan(&cash); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get cash: %w", err)
	}
	return cash, nil
}

// GetHoldings returns every holding ordered by symbol
func (r *PostgresPortfolioRepository) GetHoldings(ctx context.Context) ([]*models.Holding, error) {
	rows, err := r.db.GetPool().Query(ctx,
		`SELECT symbol, quantity, average_cost, updated_at FROM portfolio_holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		h := &models.Holding{}
		if err := rows.Scan(&h.Symbol, &h.Quantity, &h.AverageCost, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// GetHolding returns the holding for symbol
func (r *PostgresPortfolioRepository) GetHolding(ctx context.Context, symbol string) (*models.Holding, error) {
	h := &models.Holding{}
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT symbol, quantity, average_cost, updated_at FROM portfolio_holdings WHERE symbol = $1`,
		symbol,
	).Scan(&h.Symbol, &h.Quantity, &h.AverageCost, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

// ListTrades returns the most recent trades first
func (r *PostgresPortfolioRepository) ListTrades(ctx context.Context, limit int) ([]*models.Trade, error) {
	rows, err := r.db.GetPool().Query(ctx,
		`SELECT id, symbol, side, quantity, price, executed_at
		FROM portfolio_trades ORDER BY executed_at DESC LIMIT NULLIF($1::int, 0)`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		t := &models.Trade{}
		var side string
		if err := rows.Scan(&t.ID, &t.Symbol, &side, &t.Quantity, &t.Price, &t.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.Side = models.TradeSide(side)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ApplyTrade implements PortfolioRepository
func (r *PostgresPortfolioRepository) ApplyTrade(ctx context.Context, cash decimal.Decimal, holding *models.Holding, trade *models.Trade) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO portfolio_account (id, cash, updated_at) VALUES (1, $1, NOW())
			ON CONFLICT (id) DO UPDATE SET cash = EXCLUDED.cash, updated_at = NOW()`,
			cash,
		); err != nil {
			return fmt.Errorf("failed to update cash: %w", err)
		}

		if holding.Quantity.IsZero() {
			if _, err := tx.Exec(ctx, `DELETE FROM portfolio_holdings WHERE symbol = $1`, holding.Symbol); err != nil {
				return fmt.Errorf("failed to delete holding: %w", err)
			}
		} else if _, err := tx.Exec(ctx,
			`INSERT INTO portfolio_holdings (symbol, quantity, average_cost, updated_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (symbol) DO UPDATE SET quantity = EXCLUDED.quantity,
				average_cost = EXCLUDED.average_cost, updated_at = EXCLUDED.updated_at`,
			holding.Symbol, holding.Quantity, holding.AverageCost, holding.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert holding: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO portfolio_trades (id, symbol, side, quantity, price, executed_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			trade.ID, trade.Symbol, string(trade.Side), trade.Quantity, trade.Price, trade.ExecutedAt,
		); err != nil {
			return fmt.Errorf("failed to insert trade: %w", err)
		}
		return nil
	})
}

// Reset implements PortfolioRepository
func (r *PostgresPortfolioRepository) Reset(ctx context.Context, cash decimal.Decimal) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range []string{`DELETE FROM portfolio_trades`, `DELETE FROM portfolio_holdings`} {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to reset portfolio: %w", err)
			}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO portfolio_account (id, cash, updated_at) VALUES (1, $1, NOW())
			ON CONFLICT (id) DO UPDATE SET cash = EXCLUDED.cash, updated_at = NOW()`,
			cash,
		); err != nil {
			return fmt.Errorf("failed to reset cash: %w", err)
		}
		return nil
	})
}
