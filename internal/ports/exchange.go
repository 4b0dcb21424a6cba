package ports

import (
	"context"

	"cryptoGridBot/internal/domain"
)

// MarketData provides price quotes for trading symbols.
// Implementations wrap venue failures with the standard error taxonomy:
// rate limiting and server errors map to transient errors, auth failures to
// fatal ones.
type MarketData interface {
	// CurrentPrice retrieves the latest ticker price for a symbol.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// OrderGateway places, lists and cancels orders on a venue, real or
// simulated. A paper-trading implementation must synthesize fills without
// contacting any network.
type OrderGateway interface {
	// PlaceOrder submits a GTC limit order and returns the resting order
	// record with its venue-assigned (or locally generated) ID.
	PlaceOrder(ctx context.Context, symbol string, side domain.OrderSide, price, quantity float64) (*domain.Order, error)

	// ListOpenOrders returns all currently open orders for a symbol.
	ListOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error)

	// CancelAllOpen cancels every open order for a symbol and returns the
	// number of orders cancelled.
	CancelAllOpen(ctx context.Context, symbol string) (int, error)

	// AvailableBalance retrieves the free balance for an asset (e.g., "BTC").
	AvailableBalance(ctx context.Context, asset string) (float64, error)
}
