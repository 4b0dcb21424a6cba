package ports

import (
	"context"

	"cryptoGridBot/internal/domain"
)

// TradeStore is the durable append-only record of executed trades.
type TradeStore interface {
	// Append durably writes a trade record. Trades are immutable once
	// appended.
	Append(ctx context.Context, trade *domain.Trade) error

	// AllOrderedByTime retrieves every trade for a symbol in ascending
	// timestamp order. The ordering is part of the contract: performance
	// recomputation assumes its input is already sorted.
	AllOrderedByTime(ctx context.Context, symbol string) ([]*domain.Trade, error)
}
