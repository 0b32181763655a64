// Package jira wraps the Jira REST client used to create tickets from
// emails.
package jira

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	gojira "github.com/andygrunwald/go-jira"
)

// RetryConfig holds configuration for exponential backoff retry.
type RetryConfig struct {
	MaxRetries  int           // Maximum number of retry attempts (default: 3)
	BaseDelay   time.Duration // Initial delay before first retry (default: 500ms)
	MaxDelay    time.Duration // Maximum delay cap (default: 10s)
	JitterRatio float64       // Jitter as fraction of delay, 0.0-1.0 (default: 0.25)
}

// DefaultRetryConfig returns sensible defaults for Jira API retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		JitterRatio: 0.25,
	}
}

// isRetryable reports whether a response warrants a retry: rate limiting
// (429) and server-side failures (5xx). Other client errors are permanent.
func isRetryable(resp *gojira.Response) bool {
	if resp == nil {
		return false
	}
	return resp.StatusCode == 429 || (resp.StatusCode >= 500 && resp.StatusCode < 600)
}

// withRetry executes fn with exponential backoff. It retries only on
// transient responses (429 / 5xx). Permanent errors are returned immediately
// so callers see them without unnecessary delay.
func withRetry[T any](ctx context.Context, cfg RetryConfig, operation string, fn func() (T, *gojira.Response, error)) (T, error) {
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, resp, err := fn()
		if err == nil {
			return result, nil
		}

		if !isRetryable(resp) {
			return zero, err
		}

		if attempt == cfg.MaxRetries {
			return zero, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, err)
		}

		// Calculate delay: base * 2^attempt, add jitter, then cap.
		delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt)))
		if cfg.JitterRatio > 0 {
			delay += time.Duration(rand.Float64() * cfg.JitterRatio * float64(delay))
		}
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: context cancelled during retry: %w", operation, ctx.Err())
		case <-time.After(delay):
			// continue to next attempt
		}
	}

	return zero, fmt.Errorf("%s: retry loop exited unexpectedly", operation)
}
