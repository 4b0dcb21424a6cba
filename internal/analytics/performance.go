package analytics

import (
	"math"

	"cryptoGridBot/internal/domain"
)

// Snapshot holds the derived performance statistics for a trade history.
// It is a pure view: recomputing it from the same ordered history yields
// identical results, and it is never persisted as ground truth.
type Snapshot struct {
	TotalTrades      int
	WinningTrades    int
	LosingTrades     int
	WinRate          float64 // winners / realized-trade count
	TotalRealizedPnL float64
	TotalVolume      float64
	TotalCommission  float64
	AvgTradeSize     float64
	MaxDrawdown      float64 // percent decline from the running peak balance
	SharpeRatio      float64
	ProfitFactor     float64 // gross profit / |gross loss|; +Inf when loss is zero
}

// Compute derives a Snapshot from a trade history ordered by ascending
// timestamp and the balance the account started with. Only trades carrying
// non-zero realized P&L count toward win/loss statistics; entries that open
// or add to a position contribute volume and commission only.
func Compute(trades []*domain.Trade, initialBalance float64) Snapshot {
	var s Snapshot
	if len(trades) == 0 {
		return s
	}

	s.TotalTrades = len(trades)
	var grossProfit, grossLoss float64
	realized := 0
	for _, t := range trades {
		s.TotalVolume += t.TotalValue
		s.TotalCommission += t.Commission
		if t.RealizedPnL == 0 {
			continue
		}
		realized++
		s.TotalRealizedPnL += t.RealizedPnL
		if t.RealizedPnL > 0 {
			s.WinningTrades++
			grossProfit += t.RealizedPnL
		} else {
			s.LosingTrades++
			grossLoss += -t.RealizedPnL
		}
	}

	s.AvgTradeSize = s.TotalVolume / float64(s.TotalTrades)
	if realized > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(realized)
	}
	switch {
	case grossLoss > 0:
		s.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		s.ProfitFactor = math.Inf(1)
	}

	s.MaxDrawdown = maxDrawdown(trades, initialBalance)
	s.SharpeRatio = sharpeRatio(trades, initialBalance)
	return s
}

// maxDrawdown walks the realized-trade sequence in order, maintaining a
// running balance and its peak, and returns the worst peak-to-balance
// decline as a percentage.
func maxDrawdown(trades []*domain.Trade, initialBalance float64) float64 {
	balance := initialBalance
	peak := initialBalance
	worst := 0.0
	for _, t := range trades {
		if t.RealizedPnL == 0 {
			continue
		}
		balance += t.RealizedPnL
		if balance > peak {
			peak = balance
		}
		if peak > 0 {
			if dd := (peak - balance) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst * 100
}

// sharpeRatio groups realized P&L by UTC calendar day, converts each day's
// total to a return against the initial balance, and reports mean/stdev
// using the population standard deviation. Zero when there are no realized
// days or no variance; this trades precision for availability and is not a
// finance-grade Sharpe calculation.
func sharpeRatio(trades []*domain.Trade, initialBalance float64) float64 {
	if initialBalance <= 0 {
		return 0
	}

	byDay := make(map[string]float64)
	for _, t := range trades {
		if t.RealizedPnL == 0 {
			continue
		}
		day := t.Timestamp.UTC().Format("2006-01-02")
		byDay[day] += t.RealizedPnL
	}
	if len(byDay) == 0 {
		return 0
	}

	returns := make([]float64, 0, len(byDay))
	var sum float64
	for _, pnl := range byDay {
		r := pnl / initialBalance
		returns = append(returns, r)
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std
}
