package utils

import (
	"context"
	"math"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// ShouldRetry decides whether an error is retryable. Nil retries every error.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Retry executes a function with exponential backoff retry.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := RetryWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// RetryWithResult executes a function with exponential backoff retry and returns a result.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(CalculateBackoff(attempt, cfg.InitialDelay, cfg.MaxDelay, cfg.BackoffFactor)):
		}
	}

	return zero, lastErr
}

// CalculateBackoff calculates the backoff duration for a given attempt.
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration, factor float64) time.Duration {
	delay := float64(initialDelay) * math.Pow(factor, float64(attempt))
	if maxDelay > 0 && delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	return time.Duration(delay)
}
