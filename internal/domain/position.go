package domain

import "time"

// Position is the per-symbol average-cost aggregate of currently held
// quantity. Invariants: Quantity > 0 while the position exists (a position
// that returns to zero is removed from the ledger, not kept as a zero row),
// and TotalCost == Quantity * AvgPrice, maintained by construction.
type Position struct {
	Symbol      string    // Trading symbol
	Quantity    float64   // Currently held quantity in base asset units
	AvgPrice    float64   // Volume-weighted average entry price
	TotalCost   float64   // Cost basis of the held quantity
	RealizedPnL float64   // Cumulative realized P&L attributed to this symbol
	LastUpdated time.Time // Timestamp of the last mutating trade
}
