package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Policy bundles the retry and breaker settings for one dependency.
type Policy struct {
	Retry   RetryConfig
	Breaker *Breaker
}

// NewPolicy builds a Policy from flat config values. Non-positive values
// keep the defaults.
func NewPolicy(name string, attempts, failureThreshold, resetTimeoutSecs int) Policy {
	retry := DefaultRetryConfig()
	if attempts > 0 {
		retry.MaxAttempts = attempts
	}
	retry.OnRetry = RetryLogger(name)

	bc := BreakerConfig{
		FailureThreshold: failureThreshold,
		OnStateChange: func(from, to BreakerState) {
			zap.L().Warn("circuit breaker state change",
				zap.String("dependency", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	}
	if resetTimeoutSecs > 0 {
		bc.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return Policy{Retry: retry, Breaker: NewBreaker(bc)}
}

// Call runs fn under the policy: each attempt passes through the breaker
// and transient failures are retried. An open breaker is not retried.
func Call[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	retry := p.Retry
	should := retry.ShouldRetry
	if should == nil {
		should = IsTransient
	}
	retry.ShouldRetry = func(err error) bool {
		return !errors.Is(err, ErrCircuitOpen) && should(err)
	}
	return DoVal(ctx, retry, func(ctx context.Context) (T, error) {
		if p.Breaker == nil {
			return fn(ctx)
		}
		return ExecuteVal(ctx, p.Breaker, fn)
	})
}
