package worker

import (
	"context"
	"time"

	"github.com/okian/matchday/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// FailureHook is called when a result could not be recorded after all retries.
type FailureHook func(ctx context.Context, r Result, err error)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRetries sets how many extra attempts a failed Record gets and the
// delay between them.
func WithRetries(n int, backoff time.Duration) Option {
	return func(w *InMemoryWorker) {
		if n >= 0 {
			w.retries = n
		}
		if backoff >= 0 {
			w.backoff = backoff
		}
	}
}

// WithFailureHook registers fn for results that were dropped.
func WithFailureHook(fn FailureHook) Option {
	return func(w *InMemoryWorker) {
		w.onFailure = fn
	}
}
