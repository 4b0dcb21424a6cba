package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cryptoGridBot/internal/analytics"
	"cryptoGridBot/internal/domain"
	"cryptoGridBot/internal/ledger"
	"cryptoGridBot/internal/ports"
	"cryptoGridBot/internal/pricing"
	"cryptoGridBot/internal/retry"
)

// State is the lifecycle state of the grid engine.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateBuilding      State = "BUILDING"
	StateActive        State = "ACTIVE"
	StateRebalancing   State = "REBALANCING"
	StateStopped       State = "STOPPED"
)

// Config holds the grid engine parameters.
type Config struct {
	Symbol            string
	LevelCount        int
	SpacingPercent    float64
	SpacingMode       pricing.SpacingMode
	BaseOrderNotional float64
	CommissionRate    float64
	RebalanceInterval time.Duration
	AutoRebalance     bool
	PollInterval      time.Duration
	InitialBalance    float64
	RetryPolicy       retry.Policy
}

// trackedOrder associates a resting order with the grid level it sits on.
type trackedOrder struct {
	order      *domain.Order
	level      float64
	levelIndex int
}

// Engine maintains a ladder of resting limit orders around a reference
// price. Fills are detected by polling the venue's open-order list: an order
// the engine tracks that no longer appears there is treated as filled at its
// limit price, recorded in the ledger and store, and answered with a limit
// order on the opposite side one level away.
type Engine struct {
	cfg     Config
	logger  ports.Logger
	market  ports.MarketData
	gateway ports.OrderGateway
	store   ports.TradeStore
	book    *ledger.Ledger
	rules   pricing.SymbolRules

	mu            sync.Mutex
	state         State
	levels        []float64
	active        map[string]trackedOrder
	lastRebalance time.Time
	stopOnce      sync.Once
}

// New validates the configuration and dependencies and returns an engine in
// the UNINITIALIZED state.
func New(cfg Config, logger ports.Logger, market ports.MarketData, gateway ports.OrderGateway, store ports.TradeStore, book *ledger.Ledger) (*Engine, error) {
	if logger == nil || market == nil || gateway == nil || store == nil || book == nil {
		return nil, fmt.Errorf("grid engine requires logger, market data, order gateway, trade store and ledger")
	}
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if cfg.LevelCount <= 0 {
		return nil, fmt.Errorf("level count must be positive, got %d", cfg.LevelCount)
	}
	if cfg.SpacingPercent <= 0 {
		return nil, fmt.Errorf("spacing percent must be positive, got %v", cfg.SpacingPercent)
	}
	if cfg.BaseOrderNotional <= 0 {
		return nil, fmt.Errorf("base order notional must be positive, got %v", cfg.BaseOrderNotional)
	}
	if cfg.SpacingMode == "" {
		cfg.SpacingMode = pricing.Arithmetic
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.RetryPolicy.MaxAttempts <= 0 {
		cfg.RetryPolicy = retry.DefaultPolicy()
	}

	return &Engine{
		cfg:     cfg,
		logger:  logger,
		market:  market,
		gateway: gateway,
		store:   store,
		book:    book,
		rules:   pricing.RulesFor(cfg.Symbol),
		state:   StateUninitialized,
		active:  make(map[string]trackedOrder),
	}, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ActiveOrderCount returns the number of orders the engine is tracking.
func (e *Engine) ActiveOrderCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Run builds the initial ladder and then polls for fills until the context
// is cancelled or a fatal error occurs. Cancellation triggers a graceful
// Stop and returns nil.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Build(ctx); err != nil {
		if ports.IsFatal(err) {
			e.Stop(context.Background())
			return err
		}
		e.logger.Warn(ctx, "Initial ladder build failed, will retry", map[string]interface{}{"error": err.Error()})
	}

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.Stop(context.Background())
			return nil
		case <-ticker.C:
		}

		// A failed build leaves the engine in BUILDING; retry it before
		// resuming the poll cycle.
		if e.State() == StateBuilding {
			if err := e.Build(ctx); err != nil {
				if ports.IsFatal(err) {
					e.Stop(context.Background())
					return err
				}
				e.logger.Warn(ctx, "Ladder build failed, will retry", map[string]interface{}{"error": err.Error()})
			}
			continue
		}

		if err := e.Poll(ctx); err != nil {
			if ports.IsFatal(err) {
				e.Stop(context.Background())
				return err
			}
			e.logger.Warn(ctx, "Poll cycle failed", map[string]interface{}{"error": err.Error()})
			continue
		}

		if e.shouldRebalance() {
			if err := e.Rebalance(ctx); err != nil {
				if ports.IsFatal(err) {
					e.Stop(context.Background())
					return err
				}
				e.logger.Warn(ctx, "Rebalance failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// Build fetches the reference price, generates the grid levels and places
// the ladder: buy orders below the reference price, sell orders above it
// capped by the available base-asset inventory. On success the engine is
// ACTIVE; on failure it stays in BUILDING so a later attempt can retry.
func (e *Engine) Build(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateStopped {
		e.mu.Unlock()
		return fmt.Errorf("engine for %s is stopped", e.cfg.Symbol)
	}
	e.state = StateBuilding
	e.mu.Unlock()

	var price float64
	if err := retry.Do(ctx, e.cfg.RetryPolicy, func() error {
		var perr error
		price, perr = e.market.CurrentPrice(ctx, e.cfg.Symbol)
		return perr
	}); err != nil {
		return fmt.Errorf("fetch reference price for %s: %w", e.cfg.Symbol, err)
	}

	levels, err := pricing.GridLevels(price, e.cfg.LevelCount, e.cfg.SpacingPercent, e.cfg.SpacingMode)
	if err != nil {
		return fmt.Errorf("generate grid levels: %w", err)
	}

	base, _ := pricing.SplitSymbol(e.cfg.Symbol)
	var inventory float64
	if err := retry.Do(ctx, e.cfg.RetryPolicy, func() error {
		var berr error
		inventory, berr = e.gateway.AvailableBalance(ctx, base)
		return berr
	}); err != nil {
		if ports.IsFatal(err) {
			return fmt.Errorf("fetch inventory for %s: %w", base, err)
		}
		e.logger.Warn(ctx, "Inventory unavailable, sell levels will be skipped", map[string]interface{}{
			"asset": base, "error": err.Error(),
		})
		inventory = 0
	}

	e.logger.Info(ctx, "Building grid ladder", map[string]interface{}{
		"symbol":         e.cfg.Symbol,
		"referencePrice": price,
		"levels":         len(levels),
		"spacingMode":    e.cfg.SpacingMode,
		"inventory":      inventory,
	})

	placed := 0
	for i, level := range levels {
		side := domain.Sell
		quantity := e.rules.OrderQuantity(e.cfg.BaseOrderNotional, level)
		if level < price {
			side = domain.Buy
		} else {
			// Sell orders are limited by what we actually hold.
			quantity = e.rules.RoundQuantity(math.Min(quantity, inventory))
		}
		if quantity <= 0 {
			continue
		}

		limit := e.rules.RoundPrice(level)
		if verr := e.rules.ValidateOrder(quantity, limit); verr != nil {
			e.logger.Warn(ctx, "Skipping grid level failing venue filters", map[string]interface{}{
				"levelIndex": i, "price": limit, "error": verr.Error(),
			})
			continue
		}

		order, perr := e.placeOrder(ctx, side, limit, quantity, i)
		if perr != nil {
			if ports.IsFatal(perr) {
				return perr
			}
			e.logger.Warn(ctx, "Failed to place grid order", map[string]interface{}{
				"levelIndex": i, "side": side, "price": limit, "error": perr.Error(),
			})
			continue
		}
		if side == domain.Sell {
			inventory -= quantity
		}

		e.mu.Lock()
		e.active[order.ID] = trackedOrder{order: order, level: limit, levelIndex: i}
		e.mu.Unlock()
		placed++
	}

	e.mu.Lock()
	e.levels = levels
	e.state = StateActive
	e.lastRebalance = time.Now()
	e.mu.Unlock()

	e.logger.Info(ctx, "Grid ladder active", map[string]interface{}{
		"symbol": e.cfg.Symbol, "ordersPlaced": placed,
	})
	return nil
}

// Poll compares the tracked orders against the venue's open-order list.
// Tracked orders absent from the list are treated as filled at their limit
// price. Each fill is recorded and answered with an opposite-side order.
func (e *Engine) Poll(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateActive {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	var open []*domain.Order
	if err := retry.Do(ctx, e.cfg.RetryPolicy, func() error {
		var lerr error
		open, lerr = e.gateway.ListOpenOrders(ctx, e.cfg.Symbol)
		return lerr
	}); err != nil {
		return fmt.Errorf("list open orders for %s: %w", e.cfg.Symbol, err)
	}

	openIDs := make(map[string]struct{}, len(open))
	for _, o := range open {
		openIDs[o.ID] = struct{}{}
	}

	e.mu.Lock()
	var filled []trackedOrder
	for id, t := range e.active {
		if _, ok := openIDs[id]; !ok {
			filled = append(filled, t)
			delete(e.active, id)
		}
	}
	e.mu.Unlock()

	// Multiple orders can vanish within one poll; process them bottom-up
	// so the ladder reacts in a deterministic order.
	sort.Slice(filled, func(i, j int) bool { return filled[i].levelIndex < filled[j].levelIndex })

	for _, t := range filled {
		if err := e.handleFill(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// handleFill records a detected fill in the ledger and trade store, then
// places the opposite-side order one level away.
func (e *Engine) handleFill(ctx context.Context, t trackedOrder) error {
	order := t.order
	notional := order.Price * order.Quantity
	trade := &domain.Trade{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Symbol:     order.Symbol,
		Side:       order.Side,
		Quantity:   order.Quantity,
		Price:      order.Price,
		TotalValue: notional,
		Commission: notional * e.cfg.CommissionRate,
		Strategy:   "GRID",
		Reason:     fmt.Sprintf("grid level %d fill", t.levelIndex),
		OrderID:    order.ID,
	}

	e.book.ApplyTrade(trade)

	if err := e.store.Append(ctx, trade); err != nil {
		// The ledger already holds this fill. Losing the durable copy is
		// logged loudly but must not touch in-memory position state.
		e.logger.Error(ctx, err, "Failed to persist trade", map[string]interface{}{
			"tradeID": trade.ID, "orderID": order.ID,
		})
	}

	e.logger.Info(ctx, "Order filled", map[string]interface{}{
		"orderID":     order.ID,
		"side":        order.Side,
		"price":       order.Price,
		"quantity":    order.Quantity,
		"levelIndex":  t.levelIndex,
		"realizedPnl": trade.RealizedPnL,
	})

	return e.placeOppositeOrder(ctx, t)
}

// placeOppositeOrder submits the counter-order for a fill: a sell one level
// above a filled buy, a buy one level below a filled sell. Fills at the
// ladder edge get no counter-order. Rejections leave a gap at the level;
// only fatal errors propagate.
func (e *Engine) placeOppositeOrder(ctx context.Context, t trackedOrder) error {
	e.mu.Lock()
	levels := e.levels
	e.mu.Unlock()

	var idx int
	if t.order.Side == domain.Buy {
		idx = t.levelIndex + 1
		if idx >= len(levels) {
			return nil
		}
	} else {
		idx = t.levelIndex - 1
		if idx < 0 {
			return nil
		}
	}

	side := t.order.Side.Opposite()
	limit := e.rules.RoundPrice(levels[idx])
	quantity := e.rules.OrderQuantity(e.cfg.BaseOrderNotional, limit)
	if quantity <= 0 {
		return nil
	}
	if verr := e.rules.ValidateOrder(quantity, limit); verr != nil {
		e.logger.Warn(ctx, "Skipping counter-order failing venue filters", map[string]interface{}{
			"levelIndex": idx, "price": limit, "error": verr.Error(),
		})
		return nil
	}

	order, err := e.placeOrder(ctx, side, limit, quantity, idx)
	if err != nil {
		if ports.IsFatal(err) {
			return err
		}
		e.logger.Warn(ctx, "Failed to place counter-order, level left empty", map[string]interface{}{
			"levelIndex": idx, "side": side, "price": limit, "error": err.Error(),
		})
		return nil
	}

	e.mu.Lock()
	e.active[order.ID] = trackedOrder{order: order, level: limit, levelIndex: idx}
	e.mu.Unlock()

	e.logger.Info(ctx, "Counter-order placed", map[string]interface{}{
		"orderID": order.ID, "side": side, "price": limit, "quantity": quantity, "levelIndex": idx,
	})
	return nil
}

// placeOrder submits a limit order through the gateway with the engine's
// retry policy and tags it with its grid level.
func (e *Engine) placeOrder(ctx context.Context, side domain.OrderSide, price, quantity float64, levelIndex int) (*domain.Order, error) {
	var order *domain.Order
	err := retry.Do(ctx, e.cfg.RetryPolicy, func() error {
		var perr error
		order, perr = e.gateway.PlaceOrder(ctx, e.cfg.Symbol, side, price, quantity)
		return perr
	})
	if err != nil {
		return nil, err
	}
	order.LevelIndex = levelIndex
	return order, nil
}

// Rebalance cancels every open order and rebuilds the ladder around the
// current market price. Positions and realized P&L carry over untouched.
func (e *Engine) Rebalance(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateActive {
		e.mu.Unlock()
		return nil
	}
	e.state = StateRebalancing
	e.mu.Unlock()

	e.logger.Info(ctx, "Rebalancing grid ladder", map[string]interface{}{"symbol": e.cfg.Symbol})

	var cancelled int
	if err := retry.Do(ctx, e.cfg.RetryPolicy, func() error {
		var cerr error
		cancelled, cerr = e.gateway.CancelAllOpen(ctx, e.cfg.Symbol)
		return cerr
	}); err != nil {
		// Unknown how many orders survived the cancel. Resume polling the
		// existing ladder instead of stacking fresh orders on top of it.
		e.mu.Lock()
		e.state = StateActive
		e.mu.Unlock()
		return fmt.Errorf("cancel open orders for rebalance: %w", err)
	}

	e.mu.Lock()
	e.active = make(map[string]trackedOrder)
	e.mu.Unlock()

	e.logger.Info(ctx, "Open orders cancelled for rebalance", map[string]interface{}{"count": cancelled})
	return e.Build(ctx)
}

// shouldRebalance reports whether the auto-rebalance interval has elapsed.
func (e *Engine) shouldRebalance() bool {
	if !e.cfg.AutoRebalance || e.cfg.RebalanceInterval <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateActive && time.Since(e.lastRebalance) >= e.cfg.RebalanceInterval
}

// Stop cancels all open orders and logs a final performance report. It is
// idempotent and safe to call before Build has run.
func (e *Engine) Stop(ctx context.Context) {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.state = StateStopped
		e.active = make(map[string]trackedOrder)
		e.mu.Unlock()

		cancelled, err := e.gateway.CancelAllOpen(ctx, e.cfg.Symbol)
		if err != nil {
			e.logger.Error(ctx, err, "Failed to cancel open orders during shutdown", map[string]interface{}{
				"symbol": e.cfg.Symbol,
			})
		} else {
			e.logger.Info(ctx, "Open orders cancelled on shutdown", map[string]interface{}{"count": cancelled})
		}

		snap, err := e.Snapshot(ctx)
		if err != nil {
			e.logger.Error(ctx, err, "Failed to compute final performance report")
			return
		}
		e.logger.Info(ctx, "Final performance report", map[string]interface{}{
			"totalTrades":    snap.TotalTrades,
			"winRate":        snap.WinRate,
			"realizedPnl":    snap.TotalRealizedPnL,
			"maxDrawdownPct": snap.MaxDrawdown,
			"sharpeRatio":    snap.SharpeRatio,
			"profitFactor":   snap.ProfitFactor,
		})
	})
}

// Snapshot recomputes performance statistics from the full trade history.
func (e *Engine) Snapshot(ctx context.Context) (analytics.Snapshot, error) {
	trades, err := e.store.AllOrderedByTime(ctx, e.cfg.Symbol)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load trade history for %s: %w", e.cfg.Symbol, err)
	}
	return analytics.Compute(trades, e.cfg.InitialBalance), nil
}
