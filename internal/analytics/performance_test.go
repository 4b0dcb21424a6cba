package analytics

import (
	"math"
	"testing"
	"time"

	"cryptoGridBot/internal/domain"
)

func tradeWithPnL(pnl float64, ts time.Time) *domain.Trade {
	side := domain.Sell
	if pnl == 0 {
		side = domain.Buy
	}
	return &domain.Trade{
		Symbol:      "BTCUSDT",
		Side:        side,
		Timestamp:   ts,
		Quantity:    0.01,
		Price:       50000,
		TotalValue:  500,
		Commission:  0.5,
		RealizedPnL: pnl,
	}
}

func TestComputeEmptyHistory(t *testing.T) {
	s := Compute(nil, 10000)
	if s.TotalTrades != 0 || s.WinRate != 0 || s.ProfitFactor != 0 || s.SharpeRatio != 0 {
		t.Errorf("expected zero-value snapshot, got %+v", s)
	}
}

func TestComputeBasicStats(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeWithPnL(0, base),                      // opening buy, no realized P&L
		tradeWithPnL(100, base.Add(1*time.Hour)),   // win
		tradeWithPnL(-50, base.Add(2*time.Hour)),   // loss
		tradeWithPnL(25, base.Add(26*time.Hour)),   // win, next day
	}

	s := Compute(trades, 10000)

	if s.TotalTrades != 4 {
		t.Errorf("expected 4 total trades, got %d", s.TotalTrades)
	}
	if s.WinningTrades != 2 || s.LosingTrades != 1 {
		t.Errorf("expected 2 wins and 1 loss, got %d and %d", s.WinningTrades, s.LosingTrades)
	}
	// Win rate counts realized trades only, not the opening buy.
	if math.Abs(s.WinRate-2.0/3.0) > 1e-9 {
		t.Errorf("expected win rate 2/3, got %f", s.WinRate)
	}
	if math.Abs(s.TotalRealizedPnL-75) > 1e-9 {
		t.Errorf("expected total realized P&L 75, got %f", s.TotalRealizedPnL)
	}
	if math.Abs(s.TotalVolume-2000) > 1e-9 {
		t.Errorf("expected total volume 2000, got %f", s.TotalVolume)
	}
	if math.Abs(s.TotalCommission-2.0) > 1e-9 {
		t.Errorf("expected total commission 2.0, got %f", s.TotalCommission)
	}
	if math.Abs(s.AvgTradeSize-500) > 1e-9 {
		t.Errorf("expected average trade size 500, got %f", s.AvgTradeSize)
	}
	// 125 gross profit over 50 gross loss.
	if math.Abs(s.ProfitFactor-2.5) > 1e-9 {
		t.Errorf("expected profit factor 2.5, got %f", s.ProfitFactor)
	}
}

func TestComputeProfitFactorNoLosses(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeWithPnL(100, base),
		tradeWithPnL(50, base.Add(time.Hour)),
	}

	s := Compute(trades, 10000)
	if !math.IsInf(s.ProfitFactor, 1) {
		t.Errorf("expected +Inf profit factor with no losses, got %f", s.ProfitFactor)
	}
}

func TestComputeProfitFactorNoRealizedTrades(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Compute([]*domain.Trade{tradeWithPnL(0, base)}, 10000)
	if s.ProfitFactor != 0 {
		t.Errorf("expected zero profit factor, got %f", s.ProfitFactor)
	}
	if s.WinRate != 0 {
		t.Errorf("expected zero win rate, got %f", s.WinRate)
	}
}

func TestMaxDrawdown(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeWithPnL(100, base),                    // balance 10100, peak 10100
		tradeWithPnL(-300, base.Add(time.Hour)),    // balance 9800
		tradeWithPnL(50, base.Add(2*time.Hour)),    // partial recovery
	}

	s := Compute(trades, 10000)
	want := (10100.0 - 9800.0) / 10100.0 * 100
	if math.Abs(s.MaxDrawdown-want) > 1e-9 {
		t.Errorf("expected max drawdown %f, got %f", want, s.MaxDrawdown)
	}
}

func TestMaxDrawdownNeverNegative(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeWithPnL(100, base),
		tradeWithPnL(200, base.Add(time.Hour)),
	}

	s := Compute(trades, 10000)
	if s.MaxDrawdown != 0 {
		t.Errorf("expected zero drawdown for monotonic gains, got %f", s.MaxDrawdown)
	}
}

func TestSharpeRatioSingleDayIsZero(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeWithPnL(100, base),
		tradeWithPnL(-20, base.Add(time.Hour)),
	}

	// One calendar day means zero variance, so Sharpe degrades to zero.
	s := Compute(trades, 10000)
	if s.SharpeRatio != 0 {
		t.Errorf("expected zero Sharpe for a single trading day, got %f", s.SharpeRatio)
	}
}

func TestSharpeRatioMultipleDays(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeWithPnL(100, base),
		tradeWithPnL(50, base.Add(24*time.Hour)),
		tradeWithPnL(-30, base.Add(48*time.Hour)),
	}

	s := Compute(trades, 10000)
	// Daily returns: 0.01, 0.005, -0.003. Positive mean, positive stdev.
	if s.SharpeRatio <= 0 {
		t.Errorf("expected positive Sharpe ratio, got %f", s.SharpeRatio)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeWithPnL(0, base),
		tradeWithPnL(100, base.Add(time.Hour)),
		tradeWithPnL(-40, base.Add(30*time.Hour)),
	}

	first := Compute(trades, 10000)
	second := Compute(trades, 10000)
	if first != second {
		t.Errorf("recomputation differs: %+v vs %+v", first, second)
	}
}
