package llmwire

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures the exponential-backoff retry wrapper every
// adapter's network call is routed through.
type RetryConfig struct {
	Enabled         bool
	MaxRetries      int
	InitialDelay    float64 // seconds
	MaxDelay        float64 // seconds
	ExponentialBase float64
}

// DefaultRetryConfig is the retry policy used when a Config leaves
// RetryConfig unset.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled:         true,
		MaxRetries:      2,
		InitialDelay:    1.0,
		MaxDelay:        60.0,
		ExponentialBase: 2.0,
	}
}

func (c RetryConfig) delay(attempt int) time.Duration {
	d := math.Min(c.InitialDelay*math.Pow(c.ExponentialBase, float64(attempt)), c.MaxDelay)
	d = d * (0.5 + rand.Float64()) // +/- 50% jitter, in [0.5d, 1.5d)
	return time.Duration(d * float64(time.Second))
}

// OnRetryFunc observes a retry just before the delay is awaited.
type OnRetryFunc func(err error, attempt int, delay time.Duration)

// Retry executes fn under cfg's exponential-backoff policy. Non-retryable
// errors propagate immediately. When cfg.Enabled is false, fn runs exactly
// once and any error propagates as-is. On exhausting every retry with the
// error still retryable, Retry returns *RetryExhaustedError.
func Retry[T any](ctx context.Context, cfg RetryConfig, onRetry OnRetryFunc, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}
	if !cfg.Enabled {
		return zero, err
	}

	attempts := 1
	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		if !IsRetryable(err) {
			return zero, err
		}

		delay := cfg.delay(attempt)
		if rl, ok := err.(*RateLimitError); ok && rl.RetryAfter != nil {
			retryDelay := time.Duration(*rl.RetryAfter * float64(time.Second))
			if retryDelay > time.Duration(cfg.MaxDelay*float64(time.Second)) {
				return zero, err
			}
			delay = retryDelay
		}

		if onRetry != nil {
			onRetry(err, attempt+1, delay)
		}

		select {
		case <-ctx.Done():
			return zero, &AbortError{SDKError: SDKError{Message: "request cancelled during retry", Cause: ctx.Err()}}
		case <-time.After(delay):
		}

		attempts++
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
	}

	if !IsRetryable(err) {
		return zero, err
	}
	return zero, &RetryExhaustedError{Attempts: attempts, LastError: err}
}
