package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SymbolRules holds the static venue filters for one trading pair: the
// minimum order quantity, the quantity step size and the decimal precision
// accepted for prices and quantities.
type SymbolRules struct {
	MinQty            float64
	StepSize          float64
	PricePrecision    int32
	QuantityPrecision int32
}

var symbolRules = map[string]SymbolRules{
	"BTCUSDT": {MinQty: 0.00001, StepSize: 0.00001, PricePrecision: 2, QuantityPrecision: 5},
	"ETHUSDT": {MinQty: 0.001, StepSize: 0.001, PricePrecision: 2, QuantityPrecision: 3},
	"ADAUSDT": {MinQty: 1, StepSize: 1, PricePrecision: 4, QuantityPrecision: 0},
}

var defaultRules = SymbolRules{MinQty: 0.001, StepSize: 0.001, PricePrecision: 2, QuantityPrecision: 3}

// RulesFor returns the precision rules for a symbol, falling back to a
// conservative default for unknown pairs.
func RulesFor(symbol string) SymbolRules {
	if r, ok := symbolRules[symbol]; ok {
		return r
	}
	return defaultRules
}

var quoteAssets = []string{"USDT", "USDC", "BUSD", "BTC", "ETH"}

// SplitSymbol separates a pair like "BTCUSDT" into base and quote assets.
// Unrecognized quote suffixes default to USDT.
func SplitSymbol(symbol string) (base, quote string) {
	for _, q := range quoteAssets {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return strings.TrimSuffix(symbol, q), q
		}
	}
	return symbol, "USDT"
}

// RoundQuantity snaps a raw quantity to the nearest multiple of the step
// size, then to the quantity precision.
func (r SymbolRules) RoundQuantity(quantity float64) float64 {
	step := decimal.NewFromFloat(r.StepSize)
	if step.IsZero() {
		return quantity
	}
	steps := decimal.NewFromFloat(quantity).Div(step).Round(0)
	out, _ := steps.Mul(step).Round(r.QuantityPrecision).Float64()
	return out
}

// RoundPrice snaps a raw price to the symbol's price precision.
func (r SymbolRules) RoundPrice(price float64) float64 {
	out, _ := decimal.NewFromFloat(price).Round(r.PricePrecision).Float64()
	return out
}

// OrderQuantity converts a quote-asset notional into a base-asset quantity
// at the given price, rounded per the symbol rules.
func (r SymbolRules) OrderQuantity(notional, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return r.RoundQuantity(notional / price)
}

// ValidateOrder checks an order candidate against the venue filters. The
// step-size check compares on the decimal lattice rather than via float
// modulo, which misfires on representable-but-inexact quantities.
func (r SymbolRules) ValidateOrder(quantity, price float64) error {
	if quantity < r.MinQty {
		return fmt.Errorf("quantity %v is below minimum %v", quantity, r.MinQty)
	}
	q := decimal.NewFromFloat(quantity)
	step := decimal.NewFromFloat(r.StepSize)
	if !step.IsZero() && !q.Mod(step).IsZero() {
		return fmt.Errorf("quantity %v is not a multiple of step size %v", quantity, r.StepSize)
	}
	p := decimal.NewFromFloat(price)
	if !p.Equal(p.Round(r.PricePrecision)) {
		return fmt.Errorf("price %v does not match precision of %d decimals", price, r.PricePrecision)
	}
	return nil
}
