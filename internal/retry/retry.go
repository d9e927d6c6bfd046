// Package retry provides an explicit bounded retry policy with exponential
// backoff. Retry semantics live here, as a policy object handed to callers,
// rather than in ad hoc loops inside network code.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/logging"
)

// Policy configures bounded retry behavior. A nil *Policy means a single
// attempt with no retries.
type Policy struct {
	MaxAttempts  int           // Total attempts including the first
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Cap on the backoff delay
	Multiplier   float64       // Exponential backoff multiplier
}

// DefaultPolicy returns the standard policy: 3 attempts, 1s/2s delays.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Do executes fn, retrying retryable failures (per errors.IsRetryable) up
// to the policy's attempt budget. Non-retryable errors return immediately.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p == nil {
		return fn(ctx)
	}

	logger := logging.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.IsRetryable(lastErr) || attempt == p.MaxAttempts {
			break
		}

		delay := p.delay(attempt)
		logger.WithFields(map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": p.MaxAttempts,
			"delay":       delay.String(),
			"error":       lastErr.Error(),
		}).Warn("operation failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return lastErr
}

func (p *Policy) delay(attempt int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}
