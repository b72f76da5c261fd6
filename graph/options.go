package graph

import (
	"time"

	"github.com/dshills/graphflow/graph/emit"
	"github.com/dshills/graphflow/graph/store"
)

// Option configures a Runner.
//
// Options are functional and composable:
//
//	runner, err := graph.NewRunner(g,
//	    graph.WithStore(store.NewMemStore()),
//	    graph.WithEmitter(emit.NewLogEmitter(os.Stderr, false)),
//	    graph.WithMaxSteps(100),
//	    graph.WithDefaultNodeTimeout(30*time.Second),
//	)
type Option func(*runnerConfig) error

type runnerConfig struct {
	store          store.Store
	emitter        emit.Emitter
	metrics        *Metrics
	maxSteps       int
	defaultTimeout time.Duration
	policies       map[string]Policy
}

func defaultConfig() runnerConfig {
	return runnerConfig{
		store:    store.NewMemStore(),
		policies: make(map[string]Policy),
	}
}

// WithStore sets the checkpoint store. The default is an in-memory store
// with no durability across process restarts; production deployments supply
// a durable implementation (SQLite, MySQL, Redis, or their own).
func WithStore(s store.Store) Option {
	return func(cfg *runnerConfig) error {
		if s == nil {
			return &ValidationError{Code: "NIL_STORE", Message: "checkpoint store cannot be nil"}
		}
		cfg.store = s
		return nil
	}
}

// WithEmitter sets the observability event emitter. Nil disables emission
// (the default).
func WithEmitter(e emit.Emitter) Option {
	return func(cfg *runnerConfig) error {
		cfg.emitter = e
		return nil
	}
}

// WithMetrics attaches Prometheus metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(cfg *runnerConfig) error {
		cfg.metrics = m
		return nil
	}
}

// WithMaxSteps bounds the number of steps a single Invoke may execute,
// guarding against routing cycles that never reach the terminal marker.
// Zero (the default) means unlimited.
func WithMaxSteps(n int) Option {
	return func(cfg *runnerConfig) error {
		if n < 0 {
			return &ValidationError{Code: "INVALID_OPTION", Message: "max steps cannot be negative"}
		}
		cfg.maxSteps = n
		return nil
	}
}

// WithDefaultNodeTimeout bounds every node invocation that has no per-node
// timeout. A timed-out node is treated like a cancelled one. Zero (the
// default) means no timeout.
func WithDefaultNodeTimeout(d time.Duration) Option {
	return func(cfg *runnerConfig) error {
		if d < 0 {
			return &ValidationError{Code: "INVALID_OPTION", Message: "node timeout cannot be negative"}
		}
		cfg.defaultTimeout = d
		return nil
	}
}

// WithNodePolicy attaches an execution policy (timeout, opt-in retries) to a
// single node.
func WithNodePolicy(nodeID string, p Policy) Option {
	return func(cfg *runnerConfig) error {
		if nodeID == "" {
			return &ValidationError{Code: "INVALID_OPTION", Message: "policy node id cannot be empty"}
		}
		cfg.policies[nodeID] = p
		return nil
	}
}
