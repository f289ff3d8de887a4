// Package gateway wraps remote AI calls with bounded retry, exponential
// backoff, and error classification so transient provider failures never
// surface as user-facing crashes. The gateway only spends time; it does not
// deduplicate provider-side effects, so only idempotent-safe operations
// should be retried.
package gateway

import (
	"context"
	"fmt"
	"time"

	"flowforge/internal/fault"
	"flowforge/internal/logging"
)

// Operation is a remote call constructed fresh per invocation. It owns its
// whole lifecycle from creation to completion or failure.
type Operation[T any] func(ctx context.Context) (T, error)

// Policy is immutable per-call-site retry configuration.
type Policy struct {
	// MaxAttempts counts the initial attempt plus retries; 1 means no retry.
	MaxAttempts int
	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration
	// BackoffMultiplier scales the delay after each transient failure. Must
	// be >= 1; values below 1 are treated as 1.
	BackoffMultiplier float64
	// AttemptTimeout bounds each individual attempt. Zero disables the
	// per-attempt deadline and relies on the operation's own timeout.
	AttemptTimeout time.Duration
}

// Invoke runs op under the policy. Fatal failures propagate immediately;
// transient failures are retried with exponential backoff until the attempt
// budget is exhausted, at which point the final error states the exhaustion
// and preserves the last underlying cause. Cancelling ctx clears any pending
// backoff delay.
func Invoke[T any](ctx context.Context, policy Policy, classify Classifier, op Operation[T]) (T, error) {
	var zero T
	if classify == nil {
		classify = ClassifyHTTP
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.BackoffMultiplier < 1 {
		policy.BackoffMultiplier = 1
	}

	delay := policy.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			logging.GatewayDebug("Invoke: attempt %d/%d after %v backoff", attempt, policy.MaxAttempts, delay)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
			delay = time.Duration(float64(delay) * policy.BackoffMultiplier)
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
		}
		result, err := op(attemptCtx)
		cancel()
		if err == nil {
			return result, nil
		}

		cls := classify(err)
		if !cls.Transient() {
			logging.GatewayWarn("Invoke: fatal failure on attempt %d: %v", attempt, err)
			return zero, err
		}
		logging.GatewayWarn("Invoke: transient failure (%s, code %d) on attempt %d/%d: %v",
			cls.Kind, cls.Code, attempt, policy.MaxAttempts, err)
		lastErr = err
	}

	return zero, fmt.Errorf("%w: retry budget exhausted after %d attempts: %w",
		fault.ErrServiceUnavailable, policy.MaxAttempts, lastErr)
}
