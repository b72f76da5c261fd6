package graph

import (
	"math/rand"
	"time"
)

// Policy is an opt-in per-node execution policy. The engine itself never
// retries; a node only re-executes when its policy says the failure is
// retryable and attempts remain.
type Policy struct {
	// Timeout bounds one invocation of the node. Zero falls back to the
	// runner's default timeout; both zero means unlimited.
	Timeout time.Duration

	// Retry enables automatic re-execution on retryable handler errors.
	// Nil means no retries.
	Retry *RetryPolicy
}

// RetryPolicy configures exponential backoff with jitter for transient node
// failures. Retries re-run the node against the same snapshot; no state is
// merged and no checkpoint is written between attempts.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first.
	// Values below 1 behave as 1.
	MaxAttempts int

	// BaseDelay seeds the exponential backoff: delay n is roughly
	// BaseDelay * 2^n plus up to 50% jitter, capped at MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration

	// Retryable classifies errors. Nil means nothing is retryable.
	Retryable func(error) bool
}

// backoff computes the delay before the given retry attempt (0-based).
func (p *RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	// Up to 50% jitter to spread out synchronized retries.
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	if p.MaxDelay > 0 && d+jitter > p.MaxDelay {
		return p.MaxDelay
	}
	return d + jitter
}
