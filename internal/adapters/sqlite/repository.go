package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoGridBot/internal/domain"
	"cryptoGridBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.TradeStore interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite trade store.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/grid_bot.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite trade store ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		ts TIMESTAMP NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		total_value REAL NOT NULL,
		commission REAL NOT NULL DEFAULT 0,
		strategy TEXT,
		reason TEXT,
		order_id TEXT,
		realized_pnl REAL NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON trades (symbol, ts);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite trade store")
		return r.db.Close()
	}
	return nil
}

// Append durably writes a trade record.
func (r *Repository) Append(ctx context.Context, trade *domain.Trade) error {
	const query = `
	INSERT INTO trades (id, ts, symbol, side, quantity, price, total_value,
	                    commission, strategy, reason, order_id, realized_pnl)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.Timestamp, trade.Symbol, string(trade.Side), trade.Quantity,
		trade.Price, trade.TotalValue, trade.Commission, trade.Strategy, trade.Reason,
		trade.OrderID, trade.RealizedPnL)
	if err != nil {
		return fmt.Errorf("failed to insert trade %s for symbol %s: %w", trade.ID, trade.Symbol, err)
	}
	r.logger.Debug(ctx, "Trade appended", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol, "realizedPnl": trade.RealizedPnL})
	return nil
}

// AllOrderedByTime retrieves every trade for a symbol in ascending timestamp
// order, the order performance recomputation expects.
func (r *Repository) AllOrderedByTime(ctx context.Context, symbol string) ([]*domain.Trade, error) {
	const query = `
	SELECT id, ts, symbol, side, quantity, price, total_value,
	       commission, COALESCE(strategy, ''), COALESCE(reason, ''), COALESCE(order_id, ''), realized_pnl
	FROM trades
	WHERE symbol = ? ORDER BY ts ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t := &domain.Trade{}
		var side string
		if err := rows.Scan(
			&t.ID, &t.Timestamp, &t.Symbol, &side, &t.Quantity, &t.Price, &t.TotalValue,
			&t.Commission, &t.Strategy, &t.Reason, &t.OrderID, &t.RealizedPnL); err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		t.Side = domain.OrderSide(side)
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}
