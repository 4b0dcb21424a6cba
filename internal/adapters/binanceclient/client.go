package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"cryptoGridBot/internal/domain"
	"cryptoGridBot/internal/ports"
)

const (
	baseURLProduction = "https://api.binance.com"
	baseURLTestnet    = "https://testnet.binance.vision"
)

// Client implements the ports.MarketData and ports.OrderGateway interfaces
// using the go-binance spot client.
type Client struct {
	api    *binance.Client
	logger ports.Logger
}

// Config holds configuration specific to the Binance adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a new Binance adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	api := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		api.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", map[string]interface{}{"baseURL": api.BaseURL})
	} else {
		api.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", map[string]interface{}{"baseURL": api.BaseURL})
	}

	return &Client{api: api, logger: cfg.Logger}, nil
}

// handleError translates Binance API errors into the standard error taxonomy.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003, -1015: // Too many requests / too many orders
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Invalid signature
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1112, -1121, -1130:
			mappedErr = ports.ErrInvalidRequest
		case -2010: // New order rejected (filters, insufficient balance)
			mappedErr = ports.ErrOrderRejected
		case -2011: // Cancel rejected
			mappedErr = ports.ErrOrderCancelFailed
		case -2013: // Order does not exist
			mappedErr = ports.ErrOrderNotFound
		case -2014, -2015: // API key format / permissions
			mappedErr = ports.ErrInvalidAPIKeys
		case -3005, -2019:
			mappedErr = ports.ErrInsufficientFunds
		default:
			if apiErr.Code >= 500 && apiErr.Code < 600 {
				mappedErr = ports.ErrExchangeUnavailable
			} else {
				mappedErr = ports.ErrUnknown
			}
		}
		c.logger.Warn(ctx, "Binance API error", fields)
		return fmt.Errorf("%s: %s: %w", operation, apiErr.Message, mappedErr)
	}

	// Non-API errors are transport-level failures.
	c.logger.Warn(ctx, "Binance request failed", fields)
	return fmt.Errorf("%s: %v: %w", operation, err, ports.ErrConnectionFailed)
}

// CurrentPrice retrieves the latest ticker price for a symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := c.api.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, "CurrentPrice")
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no ticker price returned for %s: %w", symbol, ports.ErrNotFound)
	}
	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ticker price %q for %s: %w", prices[0].Price, symbol, err)
	}
	return price, nil
}

// PlaceOrder submits a GTC limit order. Price and quantity are expected to
// be pre-rounded to the symbol's precision rules.
func (c *Client) PlaceOrder(ctx context.Context, symbol string, side domain.OrderSide, price, quantity float64) (*domain.Order, error) {
	res, err := c.api.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideType(side)).
		Type(binance.OrderTypeLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Quantity(formatFloat(quantity)).
		Price(formatFloat(price)).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, "PlaceOrder")
	}

	order := &domain.Order{
		ID:        strconv.FormatInt(res.OrderID, 10),
		Symbol:    res.Symbol,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Status:    domain.OrderStatusNew,
		Origin:    domain.OriginLive,
		CreatedAt: time.UnixMilli(res.TransactTime).UTC(),
	}
	c.logger.Debug(ctx, "Limit order placed", map[string]interface{}{
		"orderID": order.ID, "symbol": symbol, "side": side, "price": price, "quantity": quantity,
	})
	return order, nil
}

// ListOpenOrders returns all currently open orders for a symbol.
func (c *Client) ListOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	open, err := c.api.NewListOpenOrdersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, "ListOpenOrders")
	}

	out := make([]*domain.Order, 0, len(open))
	for _, o := range open {
		price, perr := strconv.ParseFloat(o.Price, 64)
		qty, qerr := strconv.ParseFloat(o.OrigQuantity, 64)
		if perr != nil || qerr != nil {
			c.logger.Warn(ctx, "Skipping open order with unparsable fields", map[string]interface{}{
				"orderID": o.OrderID, "price": o.Price, "quantity": o.OrigQuantity,
			})
			continue
		}
		out = append(out, &domain.Order{
			ID:        strconv.FormatInt(o.OrderID, 10),
			Symbol:    o.Symbol,
			Side:      domain.OrderSide(o.Side),
			Price:     price,
			Quantity:  qty,
			Status:    domain.OrderStatusNew,
			Origin:    domain.OriginLive,
			CreatedAt: time.UnixMilli(o.Time).UTC(),
		})
	}
	return out, nil
}

// CancelAllOpen cancels every open order for a symbol, one by one, and
// returns the number cancelled. Orders that disappeared between listing and
// cancellation (already filled or cancelled) are not counted as failures.
func (c *Client) CancelAllOpen(ctx context.Context, symbol string) (int, error) {
	open, err := c.api.NewListOpenOrdersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, "CancelAllOpen")
	}

	cancelled := 0
	for _, o := range open {
		_, err := c.api.NewCancelOrderService().Symbol(symbol).OrderID(o.OrderID).Do(ctx)
		if err != nil {
			mapped := c.handleError(ctx, err, "CancelAllOpen")
			if errors.Is(mapped, ports.ErrOrderNotFound) {
				continue
			}
			return cancelled, mapped
		}
		cancelled++
	}
	return cancelled, nil
}

// AvailableBalance retrieves the free balance for an asset.
func (c *Client) AvailableBalance(ctx context.Context, asset string) (float64, error) {
	account, err := c.api.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, "AvailableBalance")
	}
	for _, b := range account.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse balance %q for asset %s: %w", b.Free, asset, err)
		}
		return free, nil
	}
	return 0, nil
}

// formatFloat renders a pre-rounded value without trailing zeros, the form
// the REST API accepts.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
