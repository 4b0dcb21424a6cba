package paper

import (
	"context"
	"fmt"
	"sync"

	"cryptoGridBot/internal/ports"
)

// Feed is a deterministic in-memory price source implementing
// ports.MarketData, used to drive the paper gateway in tests and offline
// runs.
type Feed struct {
	mu     sync.Mutex
	prices map[string]float64
}

// NewFeed creates an empty price feed.
func NewFeed() *Feed {
	return &Feed{prices: make(map[string]float64)}
}

// SetPrice publishes the current price for a symbol.
func (f *Feed) SetPrice(symbol string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = price
}

// CurrentPrice returns the last published price for a symbol.
func (f *Feed) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	price, ok := f.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no price published for %s: %w", symbol, ports.ErrNotFound)
	}
	return price, nil
}
