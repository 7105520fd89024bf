package sage

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// retryConfig holds the attempt budget and backoff settings.
type retryConfig struct {
	maxRetries int // extra attempts after the first call
	baseDelay  time.Duration
	logger     *slog.Logger
}

// RetryOption configures Retry.
type RetryOption func(*retryConfig)

// RetryMaxRetries sets how many times the call is retried after the initial
// attempt (default: 3, i.e. up to 4 calls total).
func RetryMaxRetries(n int) RetryOption {
	return func(c *retryConfig) { c.maxRetries = n }
}

// RetryBaseDelay sets the delay before the first retry (default: 1s).
// Each subsequent delay doubles: baseDelay, 2×baseDelay, 4×baseDelay, …
func RetryBaseDelay(d time.Duration) RetryOption {
	return func(c *retryConfig) { c.baseDelay = d }
}

// RetryLogger sets the structured logger for retry events. Retries log at
// WARN and final failures after exhausting the budget log at ERROR. If not
// set, no output is emitted.
func RetryLogger(l *slog.Logger) RetryOption {
	return func(c *retryConfig) { c.logger = l }
}

// Retry calls fn until it succeeds or the retry budget is exhausted, sleeping
// with exponential backoff plus jitter between failures. The last error is
// returned unchanged after the final attempt. A cancelled context stops the
// loop between attempts and returns ctx.Err().
//
// Retry is a reusable helper for arbitrary fallible operations (LLM calls,
// embedding requests). Repository calls do not use it: the storage layer has
// no retry semantics of its own.
func Retry[T any](ctx context.Context, fn func(context.Context) (T, error), opts ...RetryOption) (T, error) {
	cfg := retryConfig{maxRetries: 3, baseDelay: time.Second, logger: nopLogger}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	var last error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(cfg.baseDelay, attempt-1)
			cfg.logger.Warn("retrying after failure",
				"attempt", attempt,
				"max_retries", cfg.maxRetries,
				"delay", delay,
				"error", last)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		last = err
	}
	cfg.logger.Error("all retry attempts exhausted",
		"attempts", cfg.maxRetries+1,
		"error", last)
	return zero, last
}

// backoff returns the delay before retry i (0-indexed).
// Exponential: base * 2^i, plus up to 50% random jitter.
func backoff(base time.Duration, i int) time.Duration {
	exp := base * (1 << i)
	jitter := time.Duration(rand.Int63n(int64(exp)/2 + 1))
	return exp + jitter
}
