package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Opposite returns the other side.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderStatus represents the lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderOrigin tags where an order record came from, so downstream code never
// branches on shape: venue-assigned and simulated orders carry the same fields.
type OrderOrigin string

const (
	OriginLive      OrderOrigin = "LIVE"
	OriginSimulated OrderOrigin = "SIMULATED"
)
