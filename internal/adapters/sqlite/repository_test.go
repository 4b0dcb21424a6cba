package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoGridBot/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTrade(id string, ts time.Time, side domain.OrderSide, pnl float64) *domain.Trade {
	return &domain.Trade{
		ID:          id,
		Timestamp:   ts,
		Symbol:      "BTCUSDT",
		Side:        side,
		Quantity:    0.01,
		Price:       50000,
		TotalValue:  500,
		Commission:  0.5,
		Strategy:    "GRID",
		Reason:      "grid level 1 fill",
		OrderID:     "order-" + id,
		RealizedPnL: pnl,
	}
}

func TestAppendAndReadBack(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trade := sampleTrade("t1", ts, domain.Sell, 42.5)
	require.NoError(t, repo.Append(ctx, trade))

	trades, err := repo.AllOrderedByTime(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Equal(t, trade.ID, got.ID)
	assert.Equal(t, trade.Symbol, got.Symbol)
	assert.Equal(t, trade.Side, got.Side)
	assert.Equal(t, trade.Quantity, got.Quantity)
	assert.Equal(t, trade.Price, got.Price)
	assert.Equal(t, trade.TotalValue, got.TotalValue)
	assert.Equal(t, trade.Commission, got.Commission)
	assert.Equal(t, trade.Strategy, got.Strategy)
	assert.Equal(t, trade.Reason, got.Reason)
	assert.Equal(t, trade.OrderID, got.OrderID)
	assert.Equal(t, trade.RealizedPnL, got.RealizedPnL)
	assert.True(t, trade.Timestamp.Equal(got.Timestamp), "timestamps differ: %v vs %v", trade.Timestamp, got.Timestamp)
}

func TestAllOrderedByTimeOrdersAscending(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Insert out of order on purpose.
	require.NoError(t, repo.Append(ctx, sampleTrade("t2", base.Add(time.Hour), domain.Sell, 5)))
	require.NoError(t, repo.Append(ctx, sampleTrade("t1", base, domain.Buy, 0)))
	require.NoError(t, repo.Append(ctx, sampleTrade("t3", base.Add(2*time.Hour), domain.Sell, -3)))

	trades, err := repo.AllOrderedByTime(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "t1", trades[0].ID)
	assert.Equal(t, "t2", trades[1].ID)
	assert.Equal(t, "t3", trades[2].ID)
}

func TestAllOrderedByTimeFiltersBySymbol(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	btc := sampleTrade("t1", ts, domain.Buy, 0)
	eth := sampleTrade("t2", ts, domain.Buy, 0)
	eth.Symbol = "ETHUSDT"
	require.NoError(t, repo.Append(ctx, btc))
	require.NoError(t, repo.Append(ctx, eth))

	trades, err := repo.AllOrderedByTime(ctx, "ETHUSDT")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "t2", trades[0].ID)
}

func TestAllOrderedByTimeEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	trades, err := repo.AllOrderedByTime(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestAppendDuplicateIDFails(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, sampleTrade("t1", ts, domain.Buy, 0)))
	assert.Error(t, repo.Append(ctx, sampleTrade("t1", ts, domain.Buy, 0)))
}
