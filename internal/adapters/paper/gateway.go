package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cryptoGridBot/internal/domain"
	"cryptoGridBot/internal/ports"
	"cryptoGridBot/internal/pricing"
)

// Gateway is a paper-trading implementation of ports.OrderGateway. Orders
// rest in memory and are marked filled when the market price crosses their
// limit (buy: price at or below the limit, sell: price at or above). Crossed
// orders disappear from ListOpenOrders, so a poll loop that treats absence
// as a fill detects them without any venue-specific hooks. No network is
// ever contacted for order handling; only the injected price feed is read.
type Gateway struct {
	market         ports.MarketData
	logger         ports.Logger
	commissionRate float64

	mu       sync.Mutex
	open     map[string]*domain.Order
	balances map[string]float64
}

// Config holds configuration for the paper gateway.
type Config struct {
	Market         ports.MarketData   // Price feed used to decide fills
	Logger         ports.Logger
	CommissionRate float64            // Fee rate charged on synthetic fills
	Balances       map[string]float64 // Starting balances by asset
}

// New creates a paper gateway seeded with the configured balances.
func New(cfg Config) (*Gateway, error) {
	if cfg.Market == nil {
		return nil, fmt.Errorf("market data feed is required for paper gateway")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for paper gateway")
	}
	balances := make(map[string]float64, len(cfg.Balances))
	for asset, amount := range cfg.Balances {
		balances[asset] = amount
	}
	return &Gateway{
		market:         cfg.Market,
		logger:         cfg.Logger,
		commissionRate: cfg.CommissionRate,
		open:           make(map[string]*domain.Order),
		balances:       balances,
	}, nil
}

// PlaceOrder records a simulated resting limit order.
func (g *Gateway) PlaceOrder(ctx context.Context, symbol string, side domain.OrderSide, price, quantity float64) (*domain.Order, error) {
	if price <= 0 || quantity <= 0 {
		return nil, fmt.Errorf("price and quantity must be positive: %w", ports.ErrOrderRejected)
	}
	order := &domain.Order{
		ID:        "paper-" + uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Status:    domain.OrderStatusNew,
		Origin:    domain.OriginSimulated,
		CreatedAt: time.Now().UTC(),
	}

	g.mu.Lock()
	g.open[order.ID] = order
	g.mu.Unlock()

	g.logger.Debug(ctx, "Paper order placed", map[string]interface{}{
		"orderID": order.ID, "symbol": symbol, "side": side, "price": price, "quantity": quantity,
	})
	out := *order
	return &out, nil
}

// ListOpenOrders returns the still-resting orders for a symbol. Orders
// crossed by the current price are settled and dropped from the result.
func (g *Gateway) ListOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	price, err := g.market.CurrentPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("paper fill check needs a price for %s: %w", symbol, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*domain.Order, 0, len(g.open))
	for id, order := range g.open {
		if order.Symbol != symbol {
			continue
		}
		if crossed(order, price) {
			order.Status = domain.OrderStatusFilled
			g.settle(order)
			delete(g.open, id)
			continue
		}
		clone := *order
		out = append(out, &clone)
	}
	return out, nil
}

// CancelAllOpen drops every resting order for a symbol.
func (g *Gateway) CancelAllOpen(ctx context.Context, symbol string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 0
	for id, order := range g.open {
		if order.Symbol != symbol {
			continue
		}
		order.Status = domain.OrderStatusCancelled
		delete(g.open, id)
		count++
	}
	g.logger.Debug(ctx, "Paper orders cancelled", map[string]interface{}{"symbol": symbol, "count": count})
	return count, nil
}

// AvailableBalance returns the simulated free balance for an asset.
func (g *Gateway) AvailableBalance(ctx context.Context, asset string) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[asset], nil
}

// crossed reports whether the market price has reached the order's limit.
func crossed(order *domain.Order, price float64) bool {
	if order.Side == domain.Buy {
		return price <= order.Price
	}
	return price >= order.Price
}

// settle adjusts the simulated balances for a filled order. Caller holds the
// mutex.
func (g *Gateway) settle(order *domain.Order) {
	base, quote := pricing.SplitSymbol(order.Symbol)
	notional := order.Price * order.Quantity
	fee := notional * g.commissionRate
	if order.Side == domain.Buy {
		g.balances[base] += order.Quantity
		g.balances[quote] -= notional + fee
	} else {
		g.balances[base] -= order.Quantity
		g.balances[quote] += notional - fee
	}
}
