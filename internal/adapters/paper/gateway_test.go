package paper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoGridBot/internal/domain"
	"cryptoGridBot/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func setupGateway(t *testing.T, balances map[string]float64) (*Gateway, *Feed) {
	t.Helper()
	feed := NewFeed()
	gw, err := New(Config{
		Market:         feed,
		Logger:         &mockLogger{},
		CommissionRate: 0.001,
		Balances:       balances,
	})
	require.NoError(t, err)
	return gw, feed
}

func TestPlaceOrderAndList(t *testing.T) {
	gw, feed := setupGateway(t, map[string]float64{"USDT": 10000})
	ctx := context.Background()
	feed.SetPrice("BTCUSDT", 50000)

	order, err := gw.PlaceOrder(ctx, "BTCUSDT", domain.Buy, 49000, 0.01)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OriginSimulated, order.Origin)
	assert.Equal(t, domain.OrderStatusNew, order.Status)

	open, err := gw.ListOpenOrders(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, order.ID, open[0].ID)
}

func TestPlaceOrderRejectsNonPositiveValues(t *testing.T) {
	gw, _ := setupGateway(t, nil)
	ctx := context.Background()

	_, err := gw.PlaceOrder(ctx, "BTCUSDT", domain.Buy, 0, 0.01)
	assert.True(t, errors.Is(err, ports.ErrOrderRejected))

	_, err = gw.PlaceOrder(ctx, "BTCUSDT", domain.Buy, 49000, -1)
	assert.True(t, errors.Is(err, ports.ErrOrderRejected))
}

func TestBuyOrderFillsWhenPriceCrosses(t *testing.T) {
	gw, feed := setupGateway(t, map[string]float64{"USDT": 10000})
	ctx := context.Background()
	feed.SetPrice("BTCUSDT", 50000)

	_, err := gw.PlaceOrder(ctx, "BTCUSDT", domain.Buy, 49000, 0.01)
	require.NoError(t, err)

	// Price still above the limit, order rests.
	open, err := gw.ListOpenOrders(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, open, 1)

	// Price drops through the limit, order disappears and settles.
	feed.SetPrice("BTCUSDT", 48900)
	open, err = gw.ListOpenOrders(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Empty(t, open)

	btc, err := gw.AvailableBalance(ctx, "BTC")
	require.NoError(t, err)
	assert.InDelta(t, 0.01, btc, 1e-9)

	usdt, err := gw.AvailableBalance(ctx, "USDT")
	require.NoError(t, err)
	// 10000 - 490 notional - 0.49 commission
	assert.InDelta(t, 10000-490-0.49, usdt, 1e-9)
}

func TestSellOrderFillsWhenPriceCrosses(t *testing.T) {
	gw, feed := setupGateway(t, map[string]float64{"BTC": 1, "USDT": 0})
	ctx := context.Background()
	feed.SetPrice("BTCUSDT", 50000)

	_, err := gw.PlaceOrder(ctx, "BTCUSDT", domain.Sell, 51000, 0.01)
	require.NoError(t, err)

	feed.SetPrice("BTCUSDT", 51100)
	open, err := gw.ListOpenOrders(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Empty(t, open)

	btc, err := gw.AvailableBalance(ctx, "BTC")
	require.NoError(t, err)
	assert.InDelta(t, 0.99, btc, 1e-9)

	usdt, err := gw.AvailableBalance(ctx, "USDT")
	require.NoError(t, err)
	// 510 notional - 0.51 commission
	assert.InDelta(t, 510-0.51, usdt, 1e-9)
}

func TestListOpenOrdersRequiresPrice(t *testing.T) {
	gw, _ := setupGateway(t, nil)

	_, err := gw.ListOpenOrders(context.Background(), "BTCUSDT")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestCancelAllOpen(t *testing.T) {
	gw, feed := setupGateway(t, map[string]float64{"USDT": 10000})
	ctx := context.Background()
	feed.SetPrice("BTCUSDT", 50000)
	feed.SetPrice("ETHUSDT", 2000)

	_, err := gw.PlaceOrder(ctx, "BTCUSDT", domain.Buy, 49000, 0.01)
	require.NoError(t, err)
	_, err = gw.PlaceOrder(ctx, "BTCUSDT", domain.Buy, 48000, 0.01)
	require.NoError(t, err)
	_, err = gw.PlaceOrder(ctx, "ETHUSDT", domain.Buy, 1900, 0.1)
	require.NoError(t, err)

	count, err := gw.CancelAllOpen(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The other symbol's order survives.
	open, err := gw.ListOpenOrders(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Len(t, open, 1)
}
