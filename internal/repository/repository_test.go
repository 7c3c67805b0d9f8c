package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/invest-tracker/internal/database"
	"github.com/yourusername/invest-tracker/internal/models"
)

func testTrade(symbol string, side models.TradeSide, qty, price string, at time.Time) *models.Trade {
	return &models.Trade{
		ID:         uuid.New(),
		Symbol:     symbol,
		Side:       side,
		Quantity:   decimal.RequireFromString(qty),
		Price:      decimal.RequireFromString(price),
		ExecutedAt: at,
	}
}

// exercisePortfolioRepository runs the same scenario against any implementation
func exercisePortfolioRepository(t *testing.T, repo PortfolioRepository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	cash, err := repo.GetCash(ctx)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(1000)), "starting cash %s", cash)

	_, err = repo.GetHolding(ctx, "AAPL")
	assert.ErrorIs(t, err, models.ErrNotFound)

	holding := &models.Holding{
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		AverageCost: decimal.RequireFromString("150.25"),
		UpdatedAt:   now,
	}
	require.NoError(t, repo.ApplyTrade(ctx, decimal.RequireFromString("699.5"), holding,
		testTrade("AAPL", models.TradeSideBuy, "2", "150.25", now)))

	cash, err = repo.GetCash(ctx)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("699.5")))

	got, err := repo.GetHolding(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, got.AverageCost.Equal(decimal.RequireFromString("150.25")))

	closed := &models.Holding{Symbol: "AAPL", Quantity: decimal.Zero, UpdatedAt: now}
	require.NoError(t, repo.ApplyTrade(ctx, decimal.NewFromInt(1010), closed,
		testTrade("AAPL", models.TradeSideSell, "2", "155.25", now.Add(time.Second))))

	holdings, err := repo.GetHoldings(ctx)
	require.NoError(t, err)
	assert.Empty(t, holdings)

	trades, err := repo.ListTrades(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, models.TradeSideSell, trades[0].Side)

	trades, err = repo.ListTrades(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	require.NoError(t, repo.Reset(ctx, decimal.NewFromInt(1000)))
	trades, err = repo.ListTrades(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, trades)
	cash, err = repo.GetCash(ctx)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(1000)))
}

func exerciseBacktestResultRepository(t *testing.T, repo BacktestResultRepository) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	txs, err := json.Marshal([]models.Transaction{{Type: models.TransactionBuy, Symbol: "AAPL", Price: 90}})
	require.NoError(t, err)

	older := &models.BacktestRecord{
		ID: uuid.New(), RunDate: base.Add(-time.Hour), RuleText: "IF 100 200 BUY AAPL",
		Symbols: []string{"AAPL"}, EndIndex: 2, TotalProfit: 160, TotalTrades: 1, WinRate: 1,
		Transactions: txs, CreatedAt: base,
	}
	newer := &models.BacktestRecord{
		ID: uuid.New(), RunDate: base, RuleText: "IF NULL 300 SELL MSFT",
		Symbols: []string{"MSFT"}, EndIndex: 3, Transactions: json.RawMessage(`[]`), CreatedAt: base,
	}
	require.NoError(t, repo.SaveResult(ctx, older))
	require.NoError(t, repo.SaveResult(ctx, newer))

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.RuleText, got.RuleText)
	assert.Equal(t, []string{"AAPL"}, got.Symbols)
	assert.JSONEq(t, string(txs), string(got.Transactions))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	latest, err := repo.GetLatest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, newer.ID, latest[0].ID)
}

func TestMemoryPortfolioRepository(t *testing.T) {
	exercisePortfolioRepository(t, NewMemoryPortfolioRepository(decimal.NewFromInt(1000)))
}

func TestMemoryBacktestResultRepository(t *testing.T) {
	exerciseBacktestResultRepository(t, NewMemoryBacktestResultRepository())
}

func TestMemoryRepositoriesAreIsolatedCopies(t *testing.T) {
	repo := NewMemoryBacktestResultRepository()
	record := &models.BacktestRecord{ID: uuid.New(), RuleText: "IF 1 NULL BUY AAPL"}
	require.NoError(t, repo.SaveResult(context.Background(), record))

	record.RuleText = "mutated"
	got, err := repo.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "IF 1 NULL BUY AAPL", got.RuleText)
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil, decimal.Zero)
	assert.Error(t, err)
}

func TestPostgresPortfolioRepository(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db, decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, repos.Portfolio.Reset(context.Background(), decimal.NewFromInt(1000)))
	exercisePortfolioRepository(t, repos.Portfolio)
}

func TestPostgresBacktestResultRepository(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db, decimal.Zero)
	require.NoError(t, err)
	exerciseBacktestResultRepository(t, repos.BacktestResult)
}
