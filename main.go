package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os/signal"
	"syscall"

	"cryptoGridBot/config"
	"cryptoGridBot/internal/adapters/binanceclient"
	"cryptoGridBot/internal/adapters/logger"
	"cryptoGridBot/internal/adapters/paper"
	"cryptoGridBot/internal/adapters/sqlite"
	"cryptoGridBot/internal/engine"
	"cryptoGridBot/internal/ledger"
	"cryptoGridBot/internal/ports"
	"cryptoGridBot/internal/pricing"
	"cryptoGridBot/internal/retry"
	"cryptoGridBot/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Exchange Client (Binance Adapter)
	// The ticker endpoint is public, so the price feed works even in paper
	// mode with empty keys.
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 5. Select the Order Gateway
	var gateway ports.OrderGateway = binanceClient
	if cfg.PaperTrading {
		_, quote := pricing.SplitSymbol(cfg.Symbol)
		paperGateway, err := paper.New(paper.Config{
			Market:         binanceClient,
			Logger:         appLogger,
			CommissionRate: cfg.CommissionRate,
			Balances:       map[string]float64{quote: cfg.InitialBalance},
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize paper gateway")
			log.Fatalf("FATAL: Failed to initialize paper gateway: %v", err)
		}
		gateway = paperGateway
		appLogger.Info(context.Background(), "Paper trading enabled, no live orders will be placed", map[string]interface{}{
			"quoteAsset": quote, "initialBalance": cfg.InitialBalance,
		})
	}

	// 6. Initialize the Grid Engine
	book := ledger.New()
	gridEngine, err := engine.New(engine.Config{
		Symbol:            cfg.Symbol,
		LevelCount:        cfg.GridLevels,
		SpacingPercent:    cfg.GridSpacingPct,
		SpacingMode:       cfg.GridType,
		BaseOrderNotional: cfg.BaseOrderNotional,
		CommissionRate:    cfg.CommissionRate,
		RebalanceInterval: cfg.RebalanceInterval,
		AutoRebalance:     cfg.AutoRebalance,
		PollInterval:      cfg.PollInterval,
		InitialBalance:    cfg.InitialBalance,
		RetryPolicy: retry.Policy{
			MaxAttempts: cfg.RetryMaxAttempts,
			MinDelay:    cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			Factor:      cfg.RetryBackoffFactor,
		},
	}, appLogger, binanceClient, gateway, repo, book)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize grid engine")
		log.Fatalf("FATAL: Failed to initialize grid engine: %v", err)
	}

	// 7. Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gridEngine.Run(ctx); err != nil {
		appLogger.Error(context.Background(), err, "Grid engine exited with error")
		log.Fatalf("FATAL: Grid engine exited with error: %v", err)
	}

	// 8. Optional trade history export
	if cfg.ExportCSVPath != "" {
		trades, err := repo.AllOrderedByTime(context.Background(), cfg.Symbol)
		if err != nil {
			appLogger.Error(context.Background(), err, "Failed to load trades for CSV export")
		} else if err := utils.WriteTradesToCSV(trades, cfg.ExportCSVPath); err != nil {
			appLogger.Error(context.Background(), err, "Failed to write CSV export", map[string]interface{}{"path": cfg.ExportCSVPath})
		} else {
			appLogger.Info(context.Background(), "Trade history exported", map[string]interface{}{
				"path": cfg.ExportCSVPath, "trades": len(trades),
			})
		}
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
