package retry

import (
	"context"
	"time"

	"github.com/jpillora/backoff"

	"cryptoGridBot/internal/ports"
)

// Policy controls how transient venue failures are retried at a call site.
type Policy struct {
	MaxAttempts int           // Total attempts, including the first call
	MinDelay    time.Duration // Delay before the first retry
	MaxDelay    time.Duration // Upper bound on the backoff delay
	Factor      float64       // Backoff multiplier between retries
}

// DefaultPolicy matches the venue rate-limit guidance: a handful of attempts
// with exponential backoff capped at half a minute.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, MinDelay: time.Second, MaxDelay: 30 * time.Second, Factor: 2}
}

// Do invokes fn, retrying transient venue errors with exponential backoff
// and jitter. Rejected, fatal and unclassified errors are returned
// immediately; exhausting the attempt budget returns the last error.
func Do(ctx context.Context, policy Policy, fn func() error) error {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	b := &backoff.Backoff{
		Min:    policy.MinDelay,
		Max:    policy.MaxDelay,
		Factor: policy.Factor,
		Jitter: true,
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !ports.IsTransient(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return err
}
