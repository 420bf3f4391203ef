// Package queue is the bounded in-memory queue between a finished match and
// the workers that hand its result to the updater.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/metrics"
)

const defaultCapacity = 64

// Result is the payload flowing through the queue.
type Result = types.Result

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a result. It never blocks; a full or closed queue is an error.
	Enqueue(ctx context.Context, r Result) error

	// Dequeue returns a channel of results. It is closed when the queue is
	// closed and drained.
	Dequeue(ctx context.Context) <-chan Result

	// Len returns the number of waiting results.
	Len() int

	// Close stops accepting results. Waiting results can still be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	results  chan Result
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.results = make(chan Result, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds r to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Result) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrQueueClosed
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return fmt.Errorf("enqueue %s: %w", r.MatchID, ctx.Err())
	default:
	}

	select {
	case q.results <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.results))
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return fmt.Errorf("enqueue %s: %w", r.MatchID, ErrQueueFull)
	}
}

// Dequeue returns a channel that receives results until the queue is closed
// and drained or ctx is done.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-q.results:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.results))
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the number of waiting results.
func (q *InMemoryQueue) Len() int {
	return len(q.results)
}

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.results)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
