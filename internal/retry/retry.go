// Package retry provides exponential backoff for startup connections.
// The split-creation flow itself never retries; upload failures fall open
// to local state instead.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/split-ledger/internal/logging"
)

// Config configures retry behavior
type Config struct {
	MaxAttempts  int           // Maximum number of attempts
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Cap on the delay between retries
	Multiplier   float64       // Multiplier for exponential backoff
}

// DefaultConfig returns a default retry configuration.
// Pattern: 1s, 2s, 4s, 8s, capped at 30s.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Func is a function that can be retried
type Func func(ctx context.Context, attempt int) error

// WithBackoff executes fn with exponential backoff until it succeeds, the
// attempts are exhausted, or the context is cancelled.
func WithBackoff(ctx context.Context, config *Config, fn Func) error {
	logger := logging.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				logger.WithField("attempts", attempt).Info("Operation succeeded after retry")
			}
			return nil
		}

		lastErr = err
		if attempt >= config.MaxAttempts {
			break
		}

		delay := calculateDelay(config, attempt)
		logger.WithFields(map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": config.MaxAttempts,
			"delay":       delay.String(),
			"error":       err.Error(),
		}).Warn("Operation failed, retrying with backoff")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

// calculateDelay calculates the delay for the next retry attempt
func calculateDelay(config *Config, attempt int) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
