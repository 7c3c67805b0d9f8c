package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/invest-tracker/internal/database"
	"github.com/yourusername/invest-tracker/internal/models"
)

const (
	errScanBacktestResult = "failed to scan backtest result: %w"
	backtestResultColumns = `id, run_date, rule_text, symbols, start_index, end_index,
		total_profit, total_trades, win_rate, max_drawdown, transactions, created_at`
)

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	db *database.DB
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(db *database.DB) BacktestResultRepository {
	return &PostgresBacktestResultRepository{db: db}
}

// SaveResult inserts a backtest result
func (r *PostgresBacktestResultRepository) SaveResult(ctx context.Context, result *models.BacktestRecord) error {
	query := `INSERT INTO backtest_results (` + backtestResultColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.db.GetPool().Exec(ctx, query,
		result.ID, result.RunDate, result.RuleText, result.Symbols, result.StartIndex, result.EndIndex,
		result.TotalProfit, result.TotalTrades, result.WinRate, result.MaxDrawdown, []byte(result.Transactions), result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// GetByID retrieves one backtest result
func (r *PostgresBacktestResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRecord, error) {
	row := r.db.GetPool().QueryRow(ctx, `SELECT `+backtestResultColumns+` FROM backtest_results WHERE id = $1`, id)
	result, err := scanBacktestRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestResult, err)
	}
	return result, nil
}

// GetLatest retrieves latest backtest results
func (r *PostgresBacktestResultRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRecord, error) {
	rows, err := r.db.GetPool().Query(ctx,
		`SELECT `+backtestResultColumns+` FROM backtest_results ORDER BY run_date DESC LIMIT NULLIF($1::int, 0)`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest results: %w", err)
	}
	defer rows.Close()

	var results []*models.BacktestRecord
	for rows.Next() {
		result, err := scanBacktestRecord(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanBacktestResult, err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanBacktestRecord(row pgx.Row) (*models.BacktestRecord, error) {
	result := &models.BacktestRecord{}
	var txs []byte
	if err := row.Scan(
		&result.ID, &result.RunDate, &result.RuleText, &result.Symbols, &result.StartIndex, &result.EndIndex,
		&result.TotalProfit, &result.TotalTrades, &result.WinRate, &result.MaxDrawdown, &txs, &result.CreatedAt,
	); err != nil {
		return nil, err
	}
	result.Transactions = txs
	return result, nil
}
