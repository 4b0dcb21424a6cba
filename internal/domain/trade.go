package domain

import "time"

// Trade is the immutable record of one execution. It is created exactly once
// per fill; RealizedPnL is computed once, at creation time, by the position
// ledger and stored on the trade before it is durably written.
type Trade struct {
	ID          string    // Unique trade identifier
	Timestamp   time.Time // Execution time as observed by the poll loop
	Symbol      string    // Trading symbol (e.g., "BTCUSDT")
	Side        OrderSide // BUY or SELL
	Quantity    float64   // Executed quantity in base asset units
	Price       float64   // Execution price
	TotalValue  float64   // Quantity * Price, in quote asset units
	Commission  float64   // Fees charged for this execution
	Strategy    string    // Strategy tag (e.g., "GRID")
	Reason      string    // Free-text reason for the execution
	OrderID     string    // Identifier of the order this fill came from
	RealizedPnL float64   // Zero for entries, non-zero for exits
}
