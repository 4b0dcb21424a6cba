package ledger

import (
	"sync"

	"cryptoGridBot/internal/domain"
)

// Ledger tracks average-cost positions per symbol and attributes realized
// P&L to the trades that reduce them. Positions are created lazily on first
// trade and removed when quantity returns to zero, so exposure is a cheap
// existence check.
type Ledger struct {
	mu            sync.Mutex
	positions     map[string]*domain.Position
	totalRealized float64
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{positions: make(map[string]*domain.Position)}
}

// ApplyTrade updates the position for the trade's symbol. For a SELL that
// reduces an existing position the realized P&L is computed against the
// average cost basis and written back onto the trade before it is durably
// stored. A SELL exceeding the held quantity (oversell) is a deliberate
// no-op: the trade is recorded by the caller but the position is untouched
// and the trade's RealizedPnL stays zero.
func (l *Ledger) ApplyTrade(trade *domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[trade.Symbol]

	switch trade.Side {
	case domain.Buy:
		if !ok {
			pos = &domain.Position{Symbol: trade.Symbol}
			l.positions[trade.Symbol] = pos
		}
		pos.Quantity += trade.Quantity
		pos.TotalCost += trade.TotalValue
		if pos.Quantity > 0 {
			pos.AvgPrice = pos.TotalCost / pos.Quantity
		}
		pos.LastUpdated = trade.Timestamp

	case domain.Sell:
		if !ok || pos.Quantity < trade.Quantity {
			return
		}
		realized := (trade.Price - pos.AvgPrice) * trade.Quantity
		trade.RealizedPnL = realized
		pos.RealizedPnL += realized
		l.totalRealized += realized

		// A sell never changes the average cost of the remaining units.
		pos.Quantity -= trade.Quantity
		pos.TotalCost = pos.AvgPrice * pos.Quantity
		pos.LastUpdated = trade.Timestamp

		if pos.Quantity <= 0 {
			delete(l.positions, trade.Symbol)
		}
	}
}

// Position returns a copy of the position for a symbol, if one exists.
func (l *Ledger) Position(symbol string) (domain.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[symbol]
	if !ok {
		return domain.Position{}, false
	}
	return *pos, true
}

// HasExposure reports whether any quantity is currently held for a symbol.
func (l *Ledger) HasExposure(symbol string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.positions[symbol]
	return ok
}

// TotalRealizedPnL returns the cumulative realized P&L across all symbols,
// including positions that have since been closed out.
func (l *Ledger) TotalRealizedPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalRealized
}
