package domain

import "time"

// Order is a resting limit order on one grid level. It is owned exclusively by
// the ladder engine while NEW; once filled it is converted into a Trade and
// the Order record is discarded.
type Order struct {
	ID         string      // Venue-assigned or locally generated identifier
	Symbol     string      // Trading symbol (e.g., "BTCUSDT")
	Side       OrderSide   // BUY or SELL
	Price      float64     // Limit price
	Quantity   float64     // Order quantity in base asset units
	Status     OrderStatus // NEW, FILLED or CANCELLED
	Origin     OrderOrigin // LIVE or SIMULATED
	LevelIndex int         // Index of the grid level this order rests on
	CreatedAt  time.Time   // Time the order was placed
}
