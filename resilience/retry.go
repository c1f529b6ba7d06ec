package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures the retry policy.
type RetryConfig struct {
	// Action names the protected operation in errors.
	Action string

	// Retries is the total number of attempts, including the first.
	// Default: 3
	Retries int

	// InitialDelay is the delay before the first retry. Each subsequent
	// delay doubles.
	// Default: 300ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Jitter adds up to 25% randomness to delays to prevent thundering
	// herd. Off by default so the delay sequence is exactly
	// 300ms, 600ms, 1200ms, ...
	Jitter bool

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnFail is called before each backoff wait with the failing error,
	// the attempt number and the delay about to be applied. A positive
	// return value overrides the delay. Panics from the hook are
	// swallowed.
	OnFail func(err error, attempt int, delay time.Duration) time.Duration

	// ProxyError re-throws the last underlying error after exhausting
	// attempts instead of wrapping it in a *RetryError.
	ProxyError bool
}

// Retry re-invokes a failing operation with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry policy.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.Retries <= 0 {
		config.Retries = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 300 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	config.Action = actionOrDefault(config.Action)

	return &Retry{config: config}
}

// Execute runs the operation, retrying qualifying failures until the
// attempt budget is exhausted. Exhaustion fails with a *RetryError
// wrapping the last error, or with the last error itself when ProxyError
// is set. Non-qualifying errors propagate immediately and unchanged.
func (r *Retry) Execute(ctx context.Context, op Operation) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.Retries; attempt++ {
		err := op(ctx)

		if err == nil {
			return nil
		}

		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}

		if attempt >= r.config.Retries {
			break
		}

		delay := r.calculateDelay(attempt)

		if r.config.OnFail != nil {
			if override := r.runOnFail(err, attempt, delay); override > 0 {
				delay = override
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if r.config.ProxyError {
		return lastErr
	}

	return &RetryError{
		Action:   r.config.Action,
		Attempts: r.config.Retries,
		Inner:    lastErr,
	}
}

// runOnFail invokes the OnFail hook; hook failures must never break the
// retry loop.
func (r *Retry) runOnFail(err error, attempt int, delay time.Duration) (override time.Duration) {
	defer func() {
		if recover() != nil {
			override = 0
		}
	}()
	return r.config.OnFail(err, attempt, delay)
}

func (r *Retry) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(r.config.InitialDelay) * math.Pow(2, float64(attempt-1)))

	// Cap at max delay
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter && delay > 0 {
		// Up to 25% jitter.
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}

	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
