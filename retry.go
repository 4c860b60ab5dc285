package postageapp

import (
	"context"
)

// RetryPolicy decides how many times a call is attempted. A method in the
// configuration's retry_methods list is attempted at most twice: the
// original attempt and one immediate retry. Every other method is
// attempted once. There is no backoff.
type RetryPolicy struct {
	eligible func(method string) bool
}

// NewRetryPolicy returns the policy for cfg's retry_methods.
func NewRetryPolicy(cfg *Configuration) *RetryPolicy {
	return &RetryPolicy{
		eligible: cfg.IsRetryMethod,
	}
}

// MaxAttempts returns 2 for retry-eligible methods and 1 otherwise.
func (p *RetryPolicy) MaxAttempts(method string) int {
	if p.eligible(method) {
		return 2
	}
	return 1
}

// Do runs fn until it succeeds or the attempts for method are used up,
// and returns the number of attempts made with the last error. fn is
// given the 1-based attempt number. A cancelled ctx stops further
// attempts.
func (p *RetryPolicy) Do(ctx context.Context, method string, fn func(attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts(method)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return attempt, nil
		}

		// Don't retry once the caller has given up
		if ctx.Err() != nil {
			return attempt, lastErr
		}
	}

	return maxAttempts, lastErr
}
