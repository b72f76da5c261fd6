package graph

import (
	"context"
	"fmt"
	"time"
)

// executeNode runs one node invocation, applying the node's policy: timeout
// precedence (per-node over runner default) and opt-in retries. The returned
// error is non-nil only for timeout or cancellation; handler failures travel
// in NodeResult.Err.
func (r *Runner) executeNode(ctx context.Context, nodeID string, node Node, snapshot State) (NodeResult, error) {
	policy, hasPolicy := r.cfg.policies[nodeID]

	timeout := r.cfg.defaultTimeout
	if hasPolicy && policy.Timeout > 0 {
		timeout = policy.Timeout
	}

	attempts := 1
	var retry *RetryPolicy
	if hasPolicy && policy.Retry != nil {
		retry = policy.Retry
		if retry.MaxAttempts > 1 {
			attempts = retry.MaxAttempts
		}
	}

	var res NodeResult
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return NodeResult{}, ctx.Err()
			case <-time.After(retry.backoff(attempt - 1)):
			}
		}

		var err error
		res, err = runWithTimeout(ctx, node, nodeID, snapshot, timeout)
		if err != nil {
			return NodeResult{}, err
		}
		if res.Err == nil {
			return res, nil
		}
		if retry == nil || retry.Retryable == nil || !retry.Retryable(res.Err) {
			return res, nil
		}
	}
	return res, nil
}

// runWithTimeout invokes the node, bounding it with a deadline when one is
// configured. A deadline overrun is reported as an error, treated by the
// caller exactly like cancellation.
func runWithTimeout(ctx context.Context, node Node, nodeID string, snapshot State, timeout time.Duration) (NodeResult, error) {
	if timeout <= 0 {
		if err := ctx.Err(); err != nil {
			return NodeResult{}, err
		}
		return node.Run(ctx, snapshot), nil
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := node.Run(tctx, snapshot)
	if tctx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return NodeResult{}, fmt.Errorf("node %q exceeded timeout of %v: %w", nodeID, timeout, context.DeadlineExceeded)
	}
	if err := ctx.Err(); err != nil {
		return NodeResult{}, err
	}
	return res, nil
}
