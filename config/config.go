package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoGridBot/internal/adapters/logger" // Import the logger package for LogLevel
	"cryptoGridBot/internal/pricing"
)

// Grid sizing bounds. Grids outside these limits either spam the venue with
// orders or space levels so tightly that fees eat every round trip.
const (
	MaxGridLevels     = 20
	MinGridSpacingPct = 0.5
	MaxGridSpacingPct = 5.0
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Grid Parameters
	Symbol            string
	GridLevels        int                 // Number of levels requested (see pricing.GridLevels)
	GridSpacingPct    float64             // Spacing between adjacent levels, in percent (e.g. 1.0 for 1%)
	GridType          pricing.SpacingMode // ARITHMETIC or GEOMETRIC
	BaseOrderNotional float64             // Quote-asset notional per grid order
	AutoRebalance     bool
	RebalanceInterval time.Duration

	// Execution
	PaperTrading   bool
	InitialBalance float64 // Starting quote balance for paper trading and Sharpe scaling
	CommissionRate float64 // Fee rate applied per fill (e.g. 0.001 for 0.1%)
	PollInterval   time.Duration

	// Retry Policy
	RetryMaxAttempts   int
	RetryBaseDelay     time.Duration
	RetryMaxDelay      time.Duration
	RetryBackoffFactor float64

	// Database
	DBPath string

	// Export
	ExportCSVPath string // Empty disables the CSV export on shutdown

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Execution mode first; it decides whether API keys are required.
	cfg.PaperTrading = getEnvAsBool("PAPER_TRADING", true)

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	if !cfg.PaperTrading {
		if cfg.APIKey == "" {
			errs = append(errs, "BINANCE_API_KEY must be set for live trading")
		}
		if cfg.SecretKey == "" {
			errs = append(errs, "BINANCE_API_SECRET must be set for live trading")
		}
	}

	// Grid Parameters
	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.GridLevels, err = getEnvAsIntRequired("GRID_LEVELS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GRID_LEVELS: %v", err))
	} else if cfg.GridLevels <= 0 {
		errs = append(errs, "GRID_LEVELS must be positive")
	} else if cfg.GridLevels > MaxGridLevels {
		errs = append(errs, fmt.Sprintf("GRID_LEVELS must not exceed %d", MaxGridLevels))
	}

	cfg.GridSpacingPct, err = getEnvAsFloatRequired("GRID_SPACING_PERCENT", 1.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GRID_SPACING_PERCENT: %v", err))
	} else if cfg.GridSpacingPct < MinGridSpacingPct || cfg.GridSpacingPct > MaxGridSpacingPct {
		errs = append(errs, fmt.Sprintf("GRID_SPACING_PERCENT must be between %.1f and %.1f", MinGridSpacingPct, MaxGridSpacingPct))
	}

	gridTypeStr := getEnv("GRID_TYPE", string(pricing.Arithmetic))
	cfg.GridType, err = pricing.ParseSpacingMode(gridTypeStr)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GRID_TYPE: %v", err))
	}

	cfg.BaseOrderNotional, err = getEnvAsFloatRequired("BASE_ORDER_SIZE", 10.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BASE_ORDER_SIZE: %v", err))
	} else if cfg.BaseOrderNotional <= 0 {
		errs = append(errs, "BASE_ORDER_SIZE must be positive")
	}

	cfg.AutoRebalance = getEnvAsBool("AUTO_REBALANCE", true)

	rebalanceSeconds := getEnvAsInt("REBALANCE_INTERVAL_SECONDS", 300)
	if rebalanceSeconds <= 0 {
		errs = append(errs, "REBALANCE_INTERVAL_SECONDS must be positive")
	}
	cfg.RebalanceInterval = time.Duration(rebalanceSeconds) * time.Second

	// Execution
	cfg.InitialBalance, err = getEnvAsFloatRequired("INITIAL_BALANCE", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_BALANCE: %v", err))
	} else if cfg.InitialBalance <= 0 {
		errs = append(errs, "INITIAL_BALANCE must be positive")
	}

	cfg.CommissionRate, err = getEnvAsFloatRequired("COMMISSION_RATE", 0.001)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COMMISSION_RATE: %v", err))
	} else if cfg.CommissionRate < 0 || cfg.CommissionRate >= 1.0 {
		errs = append(errs, "COMMISSION_RATE must be between 0.0 and 1.0 (exclusive)")
	}

	pollMs := getEnvAsInt("POLL_INTERVAL_MS", 1000)
	if pollMs <= 0 {
		errs = append(errs, "POLL_INTERVAL_MS must be positive")
	}
	cfg.PollInterval = time.Duration(pollMs) * time.Millisecond

	// Retry Policy
	cfg.RetryMaxAttempts = getEnvAsInt("RETRY_MAX_ATTEMPTS", 3)
	if cfg.RetryMaxAttempts <= 0 {
		errs = append(errs, "RETRY_MAX_ATTEMPTS must be positive")
	}
	cfg.RetryBaseDelay = time.Duration(getEnvAsInt("RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond
	cfg.RetryMaxDelay = time.Duration(getEnvAsInt("RETRY_MAX_DELAY_MS", 30000)) * time.Millisecond
	cfg.RetryBackoffFactor = getEnvAsFloat("RETRY_BACKOFF_FACTOR", 2.0)
	if cfg.RetryBaseDelay <= 0 || cfg.RetryMaxDelay < cfg.RetryBaseDelay {
		errs = append(errs, "retry delays must be positive and RETRY_MAX_DELAY_MS must be >= RETRY_BASE_DELAY_MS")
	}
	if cfg.RetryBackoffFactor < 1.0 {
		errs = append(errs, "RETRY_BACKOFF_FACTOR must be >= 1.0")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/grid_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Export
	cfg.ExportCSVPath = getEnv("EXPORT_CSV_PATH", "")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
