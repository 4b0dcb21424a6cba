package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Venue Errors - transient (retried with backoff at the call site)
	ErrExchangeUnavailable = errors.New("exchange API is unavailable")
	ErrConnectionFailed    = errors.New("failed to connect to the exchange")
	ErrRateLimited         = errors.New("API rate limit exceeded")

	// Venue Errors - fatal (never retried, terminate the engine)
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrInvalidAPIKeys       = errors.New("invalid API keys or permissions")

	// Venue Errors - order handling
	ErrOrderRejected     = errors.New("order rejected by venue rules")
	ErrOrderNotFound     = errors.New("order not found on the exchange")
	ErrOrderCancelFailed = errors.New("failed to cancel order")
	ErrInsufficientFunds = errors.New("insufficient funds for operation")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)

// IsTransient reports whether err is a venue failure worth retrying:
// rate limiting, connectivity trouble or server-side unavailability.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrExchangeUnavailable) ||
		errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrTimeout)
}

// IsFatal reports whether err is an authentication or permission failure.
// Fatal errors are never retried and terminate the affected engine.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) ||
		errors.Is(err, ErrInvalidAPIKeys) ||
		errors.Is(err, ErrPermissionDenied)
}
